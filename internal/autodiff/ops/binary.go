package ops

import "github.com/born-ml/metagrad/internal/tensor"

// binary holds the operands and result of a two-input op.
type binary struct {
	a, b *tensor.RawTensor
	out  *tensor.RawTensor
}

// Inputs returns [a, b].
func (op *binary) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.a, op.b}
}

// Output returns the result of the forward pass.
func (op *binary) Output() *tensor.RawTensor {
	return op.out
}
