package ops

import "github.com/born-ml/metagrad/internal/tensor"

// CopyOp represents an identity into fresh storage. It is how a cloned
// model stays connected to the parameters it was cloned from.
type CopyOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewCopyOp creates a new CopyOp.
func NewCopyOp(input, output *tensor.RawTensor) *CopyOp {
	return &CopyOp{
		input:  input,
		output: output,
	}
}

// Backward passes the gradient through unchanged.
func (op *CopyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// Inputs returns the input tensors.
func (op *CopyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *CopyOp) Output() *tensor.RawTensor {
	return op.output
}
