// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// In a meta-learning setup these are the outer-loop optimizers: they apply
// plain, non-differentiable updates to the original model after the outer
// loss has been differentiated through the inner steps. Inner steps use
// meta.UpdateParams instead.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001}, backend)
//
//	for epoch := range epochs {
//	    fast, _ := meta.Adapt(model, supportLoss, meta.AdaptConfig{LR: 0.1})
//	    grads := autodiff.Backward(queryLoss(fast), backend)
//
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/born-ml/metagrad/internal/nn"
	"github.com/born-ml/metagrad/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	//
	// grads is the map returned by autodiff.Backward. When grads is nil,
	// each parameter's accumulated Grad() is used instead, which is what
	// nn.AccumulateGrads fills in.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// getGradient retrieves the gradient for a parameter.
//
// Returns nil if the parameter has no gradient (it wasn't part of the
// computation graph).
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	if grads == nil {
		if g := param.Grad(); g != nil {
			return g.Raw()
		}
		return nil
	}
	return grads[param.Tensor().Raw()]
}

// noGrader is implemented by backends that record operations.
type noGrader interface {
	NoGrad(fn func())
}

// withoutRecording runs fn so that optimizer arithmetic never lands on a
// gradient tape.
func withoutRecording[B tensor.Backend](backend B, fn func()) {
	if ng, ok := any(backend).(noGrader); ok {
		ng.NoGrad(fn)
		return
	}
	fn()
}
