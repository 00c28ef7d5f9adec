// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network modules for metagrad.
//
// # Overview
//
// Modules hold float64 parameters and compute a forward pass through the
// tensor backend they were created on. With an autodiff backend every
// forward pass is recorded and can be differentiated, to any order.
//
// # Basic Usage
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	model := nn.NewQuadratic(backend) // Wᵀ W x
//	loss := model.Forward(x).Sum()
//
//	grads := autodiff.Backward(loss, backend)
//	nn.AccumulateGrads(model.Parameters(), grads)
//	fmt.Println(model.Weight().Grad().Data())
//
// # Parameters by name
//
// NamedParameters returns parameters keyed by qualified names ("weight",
// "0.weight" inside a Sequential). SetParameter swaps a parameter's tensor
// by name, which is how meta.UpdateParams installs updated weights.
package nn
