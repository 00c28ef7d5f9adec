package cpu

import (
	"github.com/born-ml/metagrad/internal/tensor"
)

// broadcastStrides returns strides that read a tensor of shape in as if it
// had shape out. Dimensions that in lacks or has as 1 get stride 0, so every
// position along them maps to the same source element.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	src := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := offset; i < len(out); i++ {
		if in[i-offset] != 1 {
			strides[i] = src[i-offset]
		}
	}
	return strides
}

// sourceIndex maps flat position idx of the output to the flat position
// of the element it reads, given the output strides and the broadcast
// strides of the source.
func sourceIndex(idx int, outStrides, srcStrides []int) int {
	pos := 0
	for i, stride := range outStrides {
		pos += (idx / stride) * srcStrides[i]
		idx %= stride
	}
	return pos
}
