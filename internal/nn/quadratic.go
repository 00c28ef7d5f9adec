package nn

import (
	"fmt"

	"github.com/born-ml/metagrad/internal/tensor"
)

// DefaultQuadraticWeight is the 2x2 weight NewQuadratic starts from,
// in row-major order.
var DefaultQuadraticWeight = []float64{
	0.94, 0.07,
	0.40, 0.21,
}

// Quadratic computes Wᵀ W x for a square weight matrix W.
//
// It is linear in x but quadratic in W, so its second derivative with
// respect to W is non-trivial and has a closed form. That makes it a useful
// fixture for checking gradients of gradients.
//
// Input shape:  [n, k]
// Output shape: [n, k]
type Quadratic[B tensor.Backend] struct {
	weight *Parameter[B]
}

// NewQuadratic creates a 2x2 Quadratic layer initialised with
// DefaultQuadraticWeight.
func NewQuadratic[B tensor.Backend](backend B) *Quadratic[B] {
	q, err := NewQuadraticFrom(DefaultQuadraticWeight, 2, backend)
	if err != nil {
		panic(err)
	}
	return q
}

// NewQuadraticFrom creates a Quadratic layer with an n×n weight taken from
// data in row-major order.
func NewQuadraticFrom[B tensor.Backend](data []float64, n int, backend B) (*Quadratic[B], error) {
	if n <= 0 {
		return nil, fmt.Errorf("quadratic: size must be positive, got %d", n)
	}
	w, err := tensor.FromSlice(data, tensor.Shape{n, n}, backend)
	if err != nil {
		return nil, fmt.Errorf("quadratic: %w", err)
	}
	return &Quadratic[B]{weight: NewParameter("weight", w)}, nil
}

// Forward computes Wᵀ (W x).
func (q *Quadratic[B]) Forward(input *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B] {
	w := q.weight.Tensor()
	out := w.MatMul(input)
	return w.T().MatMul(out)
}

// Parameters returns the single weight parameter.
func (q *Quadratic[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{q.weight}
}

// Weight returns the weight parameter.
func (q *Quadratic[B]) Weight() *Parameter[B] {
	return q.weight
}

// Clone builds a Quadratic around params[0].
func (q *Quadratic[B]) Clone(params []*Parameter[B]) (Module[B], error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("quadratic: clone expects 1 parameter, got %d", len(params))
	}
	if !params[0].Tensor().Shape().Equal(q.weight.Tensor().Shape()) {
		return nil, fmt.Errorf("quadratic: clone weight shape %v, want %v",
			params[0].Tensor().Shape(), q.weight.Tensor().Shape())
	}
	return &Quadratic[B]{weight: params[0]}, nil
}
