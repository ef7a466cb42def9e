package valuation

import (
	"testing"

	"positionScope/internal/model"
)

func tickPtr(v int32) *int32 { return &v }

func TestDetermineStatus(t *testing.T) {
	cases := []struct {
		name  string
		tick  *int32
		lower int32
		upper int32
		want  model.RangeStatus
	}{
		{"inside", tickPtr(50), 0, 100, model.StatusIn},
		{"at lower bound", tickPtr(0), 0, 100, model.StatusIn},
		{"at upper bound", tickPtr(100), 0, 100, model.StatusIn},
		{"just above", tickPtr(103), 0, 100, model.StatusNear},
		{"just below", tickPtr(-5), 0, 100, model.StatusNear},
		{"far above", tickPtr(120), 0, 100, model.StatusOut},
		{"far below", tickPtr(-50), 0, 100, model.StatusOut},
		{"no pool state", nil, 0, 100, model.StatusUnknown},
		{"inverted bounds", tickPtr(50), 100, 0, model.StatusIn},
		{"negative range", tickPtr(-230), -200, -100, model.StatusOut},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := determineStatus(tc.tick, tc.lower, tc.upper)
			if got != tc.want {
				t.Fatalf("determineStatus(%v, %d, %d) = %q, want %q", tc.tick, tc.lower, tc.upper, got, tc.want)
			}
		})
	}
}
