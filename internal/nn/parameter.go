package nn

import (
	"github.com/born-ml/metagrad/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//
//	grads := autodiff.Backward(loss, backend)
//	nn.AccumulateGrads(model.Parameters(), grads)
//	grad := weight.Grad()
type Parameter[B tensor.Backend] struct {
	name   string                     // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor[float64, B] // Current value
	grad   *tensor.Tensor[float64, B] // Accumulated gradient, nil until the first backward pass
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float64, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float64, B] {
	return p.tensor
}

// SetTensor replaces the parameter value.
//
// Used by differentiable updates: the new value is usually the output of
// recorded operations on the old one, not a fresh leaf.
func (p *Parameter[B]) SetTensor(t *tensor.Tensor[float64, B]) {
	p.tensor = t
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been accumulated.
func (p *Parameter[B]) Grad() *tensor.Tensor[float64, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float64, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// AccumulateGrads adds each parameter's entry from grads to its gradient.
//
// Accumulation goes through the parameter's backend, so if that backend is
// recording the accumulated gradient stays differentiable. Parameters with
// no entry in grads are left unchanged.
func AccumulateGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range params {
		raw, ok := grads[p.tensor.Raw()]
		if !ok {
			continue
		}
		g := tensor.New[float64](raw, p.tensor.Backend())
		if p.grad == nil {
			p.grad = g
		} else {
			p.grad = p.grad.Add(g)
		}
	}
}
