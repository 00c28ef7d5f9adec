// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for metagrad.
//
// # Overview
//
// Tensors are the fundamental data structure. This package provides:
//   - Generic Tensor[T, B] parameterised by element type and backend
//   - RawTensor, the untyped buffer the autodiff tape routes gradients by
//   - The Backend interface implemented by backend/cpu and autodiff
//
// Every operation allocates a fresh result. Inputs are never written, so a
// tensor recorded on a gradient tape keeps its value for later backward
// passes.
//
// # Basic Usage
//
//	backend := cpu.New()
//	w, _ := tensor.FromSlice([]float64{0.94, 0.07, 0.40, 0.21}, tensor.Shape{2, 2}, backend)
//	x, _ := tensor.FromSlice([]float64{0.32, 0.72}, tensor.Shape{2, 1}, backend)
//	y := w.T().MatMul(w.MatMul(x)) // Wᵀ W x
//
// # Copies
//
// Clone copies through the backend and stays on the autodiff graph.
// Detach copies the buffer directly and starts a new, untracked leaf.
package tensor
