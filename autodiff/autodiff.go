// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation using a
// gradient tape. It wraps any backend to add autodiff capabilities.
//
// Backward passes are themselves written as backend operations. Running a
// pass with CreateGraph records it on the tape, so the gradients it returns
// can be differentiated again.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	x, _ := tensor.FromSlice([]float64{2}, tensor.Shape{1}, backend)
//	y := x.Mul(x).Mul(x)
//
//	grads := autodiff.BackwardWith(y, backend, autodiff.BackwardOptions{CreateGraph: true})
//	dx := tensor.New[float64](grads[x.Raw()], backend) // 3x² = 12
//	d2x := autodiff.Backward(dx, backend)[x.Raw()]     // 6x = 12
package autodiff

import (
	"github.com/born-ml/metagrad/internal/autodiff"
	"github.com/born-ml/metagrad/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardOptions controls graph retention and higher-order recording.
type BackwardOptions = autodiff.BackwardOptions

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients via backpropagation and frees the graph.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}

// BackwardWith computes gradients with explicit graph options.
//
// Example:
//
//	grads := autodiff.BackwardWith(loss, backend, autodiff.BackwardOptions{
//	    RetainGraph: true,
//	    CreateGraph: true,
//	})
func BackwardWith[T tensor.DType, B BackwardCapable](
	t *tensor.Tensor[T, B],
	backend B,
	opts BackwardOptions,
) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.BackwardWith(t, backend, opts)
}
