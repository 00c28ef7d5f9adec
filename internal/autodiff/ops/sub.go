package ops

import "github.com/born-ml/metagrad/internal/tensor"

// SubOp records out = a - b.
//
// a receives the incoming gradient and b its negation. The negation is a
// MulScalar on the backend, so it lands on the tape when the backward pass
// is itself recorded. The meta update W - lr·g relies on this: the
// gradient reaching g is -lr times the gradient of the new weight.
type SubOp struct {
	binary
}

// NewSubOp records a - b = output.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{binary{a: a, b: b, out: output}}
}

// Backward returns [grad, -grad], each reduced to its operand's shape.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	neg := negateGradient(outputGrad, backend)
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, op.a.Shape(), backend),
		reduceBroadcast(neg, op.b.Shape(), backend),
	}
}
