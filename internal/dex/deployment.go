package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Deployment identifies one DEX's V3 contracts on the target chain.
type Deployment struct {
	ID              string
	Name            string
	PositionManager common.Address
	Factory         common.Address
}

// DeploymentSpec is the raw config-file shape of a deployment.
type DeploymentSpec struct {
	ID              string `mapstructure:"id" yaml:"id"`
	Name            string `mapstructure:"name" yaml:"name"`
	PositionManager string `mapstructure:"position_manager" yaml:"position_manager"`
	Factory         string `mapstructure:"factory" yaml:"factory"`
}

// ParseDeployments validates deployment specs into typed deployments.
func ParseDeployments(specs []DeploymentSpec) ([]Deployment, error) {
	out := make([]Deployment, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.ID == "" {
			return nil, fmt.Errorf("deployment id is required")
		}
		if _, ok := seen[spec.ID]; ok {
			return nil, fmt.Errorf("duplicate deployment id %q", spec.ID)
		}
		seen[spec.ID] = struct{}{}

		if !common.IsHexAddress(spec.PositionManager) {
			return nil, fmt.Errorf("deployment %s: invalid position manager address %q", spec.ID, spec.PositionManager)
		}
		if !common.IsHexAddress(spec.Factory) {
			return nil, fmt.Errorf("deployment %s: invalid factory address %q", spec.ID, spec.Factory)
		}

		name := spec.Name
		if name == "" {
			name = spec.ID
		}
		out = append(out, Deployment{
			ID:              spec.ID,
			Name:            name,
			PositionManager: common.HexToAddress(spec.PositionManager),
			Factory:         common.HexToAddress(spec.Factory),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one deployment is required")
	}
	return out, nil
}
