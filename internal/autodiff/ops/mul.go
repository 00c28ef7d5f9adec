package ops

import "github.com/born-ml/metagrad/internal/tensor"

// MulOp records out = a * b elementwise.
//
// Each operand's gradient is the incoming gradient times the other
// operand. Because that product reads a forward value, a recorded
// backward keeps a graph edge to it and x*x has a second derivative.
type MulOp struct {
	binary
}

// NewMulOp records a * b = output.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{binary{a: a, b: b, out: output}}
}

// Backward returns [grad*b, grad*a], each reduced to its operand's shape.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradA := reduceBroadcast(backend.Mul(outputGrad, op.b), op.a.Shape(), backend)
	gradB := reduceBroadcast(backend.Mul(outputGrad, op.a), op.b.Shape(), backend)
	return []*tensor.RawTensor{gradA, gradB}
}
