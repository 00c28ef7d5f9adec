package meta

import (
	"errors"
	"fmt"

	"github.com/born-ml/metagrad/internal/nn"
	"github.com/born-ml/metagrad/internal/tensor"
)

// AdaptConfig contains configuration for the inner adaptation loop.
type AdaptConfig struct {
	Steps int     // Number of differentiable SGD steps (default: 1)
	LR    float64 // Inner learning rate
}

// LossFunc builds the support loss for a model.
type LossFunc[B tensor.Backend] func(model nn.Module[B]) *tensor.Tensor[float64, B]

// Adapt runs the MAML inner loop: it clones model and takes config.Steps
// differentiable steps on the clone with UpdateParams.
//
// model itself is never modified. A loss computed with the returned clone
// can be differentiated back to model's parameters through every step.
func Adapt[B tensor.Backend](model nn.Module[B], lossFn LossFunc[B], config AdaptConfig) (nn.Module[B], error) {
	if config.Steps == 0 {
		config.Steps = 1
	}
	if config.Steps < 0 {
		return nil, fmt.Errorf("adapt: steps must be positive, got %d", config.Steps)
	}
	if config.LR <= 0 {
		return nil, errors.New("adapt: learning rate must be positive")
	}

	fast, err := CloneModel(model)
	if err != nil {
		return nil, fmt.Errorf("adapt: %w", err)
	}

	for step := 0; step < config.Steps; step++ {
		loss := lossFn(fast)
		if err := UpdateParams(nn.NamedParameters(fast), fast, loss, config.LR); err != nil {
			return nil, fmt.Errorf("adapt: step %d: %w", step, err)
		}
	}
	return fast, nil
}
