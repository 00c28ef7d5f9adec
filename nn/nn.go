// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/metagrad/internal/nn"
	"github.com/born-ml/metagrad/tensor"
)

// Module is the base interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// Cloner is implemented by modules that can rebuild themselves around a
// new set of parameters.
type Cloner[B tensor.Backend] = nn.Cloner[B]

// Parameter represents a trainable parameter.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NamedParameter pairs a parameter with its qualified name.
type NamedParameter[B tensor.Backend] = nn.NamedParameter[B]

// Quadratic computes Wᵀ W x.
type Quadratic[B tensor.Backend] = nn.Quadratic[B]

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// DefaultQuadraticWeight is the weight NewQuadratic starts from.
var DefaultQuadraticWeight = nn.DefaultQuadraticWeight

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float64, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// NewQuadratic creates a 2x2 Quadratic layer with DefaultQuadraticWeight.
func NewQuadratic[B tensor.Backend](backend B) *Quadratic[B] {
	return nn.NewQuadratic(backend)
}

// NewQuadraticFrom creates a Quadratic layer with an n×n row-major weight.
func NewQuadraticFrom[B tensor.Backend](data []float64, n int, backend B) (*Quadratic[B], error) {
	return nn.NewQuadraticFrom(data, n, backend)
}

// NewSequential creates a Sequential container.
//
// Example:
//
//	model := nn.NewSequential[Backend](nn.NewQuadratic(backend), nn.NewQuadratic(backend))
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// NamedParameters returns the model's parameters in order with their
// qualified names.
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	return nn.NamedParameters(m)
}

// SetParameter replaces the tensor of the parameter called name.
func SetParameter[B tensor.Backend](m Module[B], name string, t *tensor.Tensor[float64, B]) error {
	return nn.SetParameter(m, name, t)
}

// ZeroGrad clears every parameter gradient of m.
func ZeroGrad[B tensor.Backend](m Module[B]) {
	nn.ZeroGrad(m)
}

// AccumulateGrads adds each parameter's entry in grads to its gradient.
func AccumulateGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.AccumulateGrads(params, grads)
}
