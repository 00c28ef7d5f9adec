package ops

import "github.com/born-ml/metagrad/internal/tensor"

// MatMulOp records out = a @ b for 2-D operands.
//
// The gradient of a is grad @ bᵀ and the gradient of b is aᵀ @ grad. Both
// products read the forward inputs, so under a recording backend the
// gradient of a depends on b and vice versa. For Wᵀ W x this is where the
// non-zero second derivative comes from.
type MatMulOp struct {
	binary
}

// NewMatMulOp records a @ b = output.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{binary{a: a, b: b, out: output}}
}

// Backward returns [grad @ bᵀ, aᵀ @ grad].
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradA := backend.MatMul(outputGrad, backend.Transpose(op.b, 1, 0))
	gradB := backend.MatMul(backend.Transpose(op.a, 1, 0), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}
