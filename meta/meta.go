// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package meta provides differentiable parameter updates for MAML-style
// meta-learning.
//
// UpdateParams takes an SGD step whose result stays on the autodiff graph,
// so a loss evaluated after the step can be differentiated back to the
// parameters the step started from. CloneModel gives the inner loop its own
// copy of a model while routing gradients back to the original.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	model := nn.NewQuadratic(backend)
//	fast, _ := meta.CloneModel[Backend](model)
//	_ = meta.UpdateParams(nn.NamedParameters(fast), fast, fast.Forward(x).Sum(), 0.1)
//
//	grads := autodiff.Backward(fast.Forward(x).Sum(), backend)
//	nn.AccumulateGrads(model.Parameters(), grads) // second-order meta-gradient
package meta

import (
	"github.com/born-ml/metagrad/internal/meta"
	"github.com/born-ml/metagrad/nn"
	"github.com/born-ml/metagrad/tensor"
)

// Sentinel errors.
var (
	ErrNoGradient        = meta.ErrNoGradient
	ErrNotDifferentiable = meta.ErrNotDifferentiable
	ErrNotCloneable      = meta.ErrNotCloneable
)

// AdaptConfig contains configuration for Adapt.
type AdaptConfig = meta.AdaptConfig

// LossFunc builds the support loss for a model.
type LossFunc[B tensor.Backend] = meta.LossFunc[B]

// UpdateParams takes one differentiable gradient step on model.
func UpdateParams[B tensor.Backend](
	params []nn.NamedParameter[B],
	model nn.Module[B],
	loss *tensor.Tensor[float64, B],
	lr float64,
) error {
	return meta.UpdateParams(params, model, loss, lr)
}

// CloneModel returns a graph-connected copy of model.
func CloneModel[B tensor.Backend](model nn.Module[B]) (nn.Module[B], error) {
	return meta.CloneModel(model)
}

// Adapt clones model and takes config.Steps differentiable steps on it.
func Adapt[B tensor.Backend](model nn.Module[B], lossFn LossFunc[B], config AdaptConfig) (nn.Module[B], error) {
	return meta.Adapt(model, lossFn, config)
}
