// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the outer-loop optimizers for metagrad.
//
// SGD and Adam update leaf parameters in place and never record on a
// gradient tape. Step takes the gradient map from autodiff.Backward, or nil
// to use gradients accumulated with nn.AccumulateGrads.
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-3}, backend)
//	grads := autodiff.Backward(outerLoss, backend)
//	optimizer.Step(grads)
package optim
