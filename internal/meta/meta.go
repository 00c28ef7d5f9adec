// Package meta implements differentiable parameter updates for MAML-style
// meta-learning.
//
// An inner-loop step replaces each parameter W with W − lr·∂loss/∂W, where
// the gradient is computed with the graph kept alive. The replacement is an
// ordinary graph node, so an outer loss evaluated with the updated model can
// be differentiated back to the parameters the step started from, second
// order terms included.
//
// Typical use:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	model := nn.NewQuadratic(backend)
//	fast, _ := meta.CloneModel[Backend](model)
//	loss := fast.Forward(x).Sum()
//	_ = meta.UpdateParams(nn.NamedParameters(fast), fast, loss, 0.1)
//
//	outer := fast.Forward(x).Sum()
//	grads := autodiff.Backward(outer, backend)
//	nn.AccumulateGrads(model.Parameters(), grads) // model's own weights
package meta

import (
	"errors"
	"fmt"

	"github.com/born-ml/metagrad/internal/autodiff"
	"github.com/born-ml/metagrad/internal/nn"
	"github.com/born-ml/metagrad/internal/tensor"
)

var (
	// ErrNoGradient is returned when the loss does not depend on a
	// parameter that was asked to be updated.
	ErrNoGradient = errors.New("parameter received no gradient")

	// ErrNotDifferentiable is returned when the loss was computed on a
	// backend that does not record operations.
	ErrNotDifferentiable = errors.New("backend does not support automatic differentiation")

	// ErrNotCloneable is returned by CloneModel for models that do not
	// implement nn.Cloner.
	ErrNotCloneable = errors.New("model does not implement nn.Cloner")
)

// UpdateParams takes one differentiable gradient step on model.
//
// It runs a backward pass from loss with CreateGraph, then for every
// (name, parameter) in params computes new = old − lr·grad on the recording
// backend and installs new in model under name. The new tensors keep their
// graph edges back to the old parameters and to loss.
//
// params is usually nn.NamedParameters(model). Nothing is modified unless
// every name exists in model with a matching shape and every parameter
// received a gradient. A missing gradient is reported as an error wrapping
// ErrNoGradient that names the first offending parameter.
//
// A parameter listed under several names (a tied weight) gets one update,
// computed from its accumulated gradient and installed under every name.
func UpdateParams[B tensor.Backend](
	params []nn.NamedParameter[B],
	model nn.Module[B],
	loss *tensor.Tensor[float64, B],
	lr float64,
) error {
	backend := loss.Backend()
	diff, ok := any(backend).(autodiff.BackwardCapable)
	if !ok {
		return fmt.Errorf("update params: %s: %w", backend.Name(), ErrNotDifferentiable)
	}

	installed := make(map[string]*nn.Parameter[B])
	for _, np := range nn.NamedParameters(model) {
		installed[np.Name] = np.Param
	}
	for _, np := range params {
		if _, ok := installed[np.Name]; !ok {
			return fmt.Errorf("update params: %q: no such parameter in %T", np.Name, model)
		}
	}

	grads := diff.GetTape().Backward(
		loss.Raw(),
		tensor.OnesLikeRaw(loss.Raw()),
		diff,
		autodiff.BackwardOptions{CreateGraph: true},
	)

	stepped := make(map[*nn.Parameter[B]]*tensor.Tensor[float64, B])
	updates := make([]*tensor.Tensor[float64, B], len(params))
	for i, np := range params {
		if update, ok := stepped[np.Param]; ok {
			updates[i] = update
			continue
		}
		raw, ok := grads[np.Param.Tensor().Raw()]
		if !ok {
			return fmt.Errorf("update params: %q: %w", np.Name, ErrNoGradient)
		}
		grad := tensor.New[float64](raw, backend)
		updates[i] = np.Param.Tensor().Sub(grad.MulScalar(lr))
		stepped[np.Param] = updates[i]
	}
	for i, np := range params {
		want := installed[np.Name].Tensor().Shape()
		if !want.Equal(updates[i].Shape()) {
			return fmt.Errorf("update params: %q: shape %v does not match %v", np.Name, updates[i].Shape(), want)
		}
	}

	for i, np := range params {
		if err := nn.SetParameter(model, np.Name, updates[i]); err != nil {
			return fmt.Errorf("update params: %w", err)
		}
	}
	return nil
}

// CloneModel returns a copy of model with freshly allocated parameters.
//
// Each parameter of the copy is produced by a recorded Copy of the
// original, so the copy shares no storage with model, but gradients of
// losses computed with the copy flow back onto model's parameters. If the
// backend is not recording, the copy is fully detached.
//
// A parameter that appears more than once in model, such as a module
// repeated inside a Sequential, is copied once and stays shared in the
// copy.
func CloneModel[B tensor.Backend](model nn.Module[B]) (nn.Module[B], error) {
	cloner, ok := model.(nn.Cloner[B])
	if !ok {
		return nil, fmt.Errorf("clone model %T: %w", model, ErrNotCloneable)
	}

	params := model.Parameters()
	seen := make(map[*nn.Parameter[B]]*nn.Parameter[B], len(params))
	copies := make([]*nn.Parameter[B], len(params))
	for i, p := range params {
		c, ok := seen[p]
		if !ok {
			c = nn.NewParameter(p.Name(), p.Tensor().Clone())
			seen[p] = c
		}
		copies[i] = c
	}

	clone, err := cloner.Clone(copies)
	if err != nil {
		return nil, fmt.Errorf("clone model: %w", err)
	}
	return clone, nil
}
