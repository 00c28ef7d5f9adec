package cpu

import (
	"fmt"

	"github.com/born-ml/metagrad/internal/tensor"
)

// Expand broadcasts the tensor to a new shape.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()

	if len(newShape) < len(xShape) {
		panic(fmt.Sprintf("expand: new shape %v has fewer dimensions than input shape %v",
			newShape, xShape))
	}

	// Align from the right: each input dimension must match or be 1.
	offset := len(newShape) - len(xShape)
	for i, xDim := range xShape {
		newDim := newShape[offset+i]
		if xDim != 1 && xDim != newDim {
			panic(fmt.Sprintf("expand: cannot expand dimension %d from %d to %d",
				i, xDim, newDim))
		}
	}

	result, err := tensor.NewRaw(newShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}

	outStrides := newShape.ComputeStrides()
	inStrides := broadcastStrides(xShape, newShape)

	switch x.DType() {
	case tensor.Float32:
		expand(result.AsFloat32(), x.AsFloat32(), outStrides, inStrides)
	case tensor.Float64:
		expand(result.AsFloat64(), x.AsFloat64(), outStrides, inStrides)
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %v", x.DType()))
	}

	return result
}

func expand[T float32 | float64](dst, src []T, outStrides, inStrides []int) {
	for i := range dst {
		dst[i] = src[sourceIndex(i, outStrides, inStrides)]
	}
}
