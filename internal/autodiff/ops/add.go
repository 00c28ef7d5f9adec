package ops

import "github.com/born-ml/metagrad/internal/tensor"

// AddOp records out = a + b.
//
// The incoming gradient passes to both operands unchanged, summed down to
// each operand's shape when the forward pass broadcast it. Nothing here
// reads a or b, so under CreateGraph the recorded backward is only the
// broadcast reduction.
type AddOp struct {
	binary
}

// NewAddOp records a + b = output.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{binary{a: a, b: b, out: output}}
}

// Backward returns [grad, grad], each reduced to its operand's shape.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, op.a.Shape(), backend),
		reduceBroadcast(outputGrad, op.b.Shape(), backend),
	}
}
