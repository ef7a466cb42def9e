package dex

import (
	"testing"
)

const (
	validManager = "0xC36442b4a4522E871399CD717aBDD847Ab11FE88"
	validFactory = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
)

func TestParseDeployments(t *testing.T) {
	specs := []DeploymentSpec{
		{ID: "uniswap-v3", Name: "Uniswap V3", PositionManager: validManager, Factory: validFactory},
		{ID: "pancake-v3", PositionManager: validManager, Factory: validFactory},
	}

	got, err := ParseDeployments(specs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deployments, got %d", len(got))
	}
	if got[0].Name != "Uniswap V3" {
		t.Fatalf("name mismatch: %q", got[0].Name)
	}
	if got[1].Name != "pancake-v3" {
		t.Fatalf("name should default to id, got %q", got[1].Name)
	}
}

func TestParseDeploymentsRejects(t *testing.T) {
	cases := []struct {
		name  string
		specs []DeploymentSpec
	}{
		{"empty", nil},
		{"missing id", []DeploymentSpec{{PositionManager: validManager, Factory: validFactory}}},
		{"duplicate id", []DeploymentSpec{
			{ID: "a", PositionManager: validManager, Factory: validFactory},
			{ID: "a", PositionManager: validManager, Factory: validFactory},
		}},
		{"bad manager", []DeploymentSpec{{ID: "a", PositionManager: "0x123", Factory: validFactory}}},
		{"bad factory", []DeploymentSpec{{ID: "a", PositionManager: validManager, Factory: "nope"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseDeployments(tc.specs); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
