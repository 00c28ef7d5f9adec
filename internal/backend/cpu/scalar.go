package cpu

import (
	"fmt"

	"github.com/born-ml/metagrad/internal/tensor"
)

// MulScalar multiplies each element of the tensor by a scalar value.
// The scalar may be any Go float or int; it is converted to the tensor dtype.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("mulScalar: failed to create result tensor: %v", err))
	}

	s := toFloat64(scalar)
	switch x.DType() {
	case tensor.Float32:
		mulScalar(result.AsFloat32(), x.AsFloat32(), float32(s))
	case tensor.Float64:
		mulScalar(result.AsFloat64(), x.AsFloat64(), s)
	default:
		panic(fmt.Sprintf("mulScalar: unsupported dtype %v", x.DType()))
	}

	return result
}

func mulScalar[T float32 | float64](dst, src []T, s T) {
	for i, v := range src {
		dst[i] = v * s
	}
}

func toFloat64(scalar any) float64 {
	switch s := scalar.(type) {
	case float64:
		return s
	case float32:
		return float64(s)
	case int:
		return float64(s)
	default:
		panic(fmt.Sprintf("mulScalar: unsupported scalar type %T", scalar))
	}
}
