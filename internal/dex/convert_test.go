package dex

import (
	"math/big"
	"testing"
)

func TestInt24FromBig(t *testing.T) {
	cases := []struct {
		in   int64
		want int32
		ok   bool
	}{
		{0, 0, true},
		{-887272, -887272, true},
		{887272, 887272, true},
		{1<<23 - 1, 1<<23 - 1, true},
		{-1 << 23, -1 << 23, true},
		{1 << 23, 0, false},
		{-1<<23 - 1, 0, false},
	}

	for _, tc := range cases {
		got, err := int24FromBig(big.NewInt(tc.in))
		if tc.ok && err != nil {
			t.Fatalf("int24FromBig(%d): unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("int24FromBig(%d): expected overflow error", tc.in)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("int24FromBig(%d) = %d", tc.in, got)
		}
	}
}

func TestBytes32ToString(t *testing.T) {
	var padded [32]byte
	copy(padded[:], "MKR")

	got, ok := bytes32ToString(padded)
	if !ok || got != "MKR" {
		t.Fatalf("bytes32ToString = %q, %v", got, ok)
	}

	if _, ok := bytes32ToString(42); ok {
		t.Fatalf("expected failure for non-byte input")
	}
}
