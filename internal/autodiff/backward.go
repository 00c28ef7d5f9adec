package autodiff

import (
	"fmt"

	"github.com/born-ml/metagrad/internal/tensor"
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t and frees the graph afterwards.
//
// Returns a map from RawTensor to its gradient.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones[float64](Shape{2}, backend)
//	y := x.Mul(x) // y = x²
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // Get gradient for x
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return BackwardWith(t, backend, BackwardOptions{})
}

// BackwardWith computes gradients of t with explicit graph options.
//
// The output gradient is seeded with ones, so for a non-scalar t the result
// is the gradient of sum(t). Panics if nothing has been recorded, which is
// also what happens on a second pass through a graph that was not retained.
func BackwardWith[T tensor.DType, B BackwardCapable](
	t *tensor.Tensor[T, B],
	backend B,
	opts BackwardOptions,
) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()

	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording(), or was the graph freed?)")
	}

	switch t.DType() {
	case tensor.Float32, tensor.Float64:
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float32/float64 supported)", t.DType()))
	}

	return tape.Backward(t.Raw(), tensor.OnesLikeRaw(t.Raw()), backend, opts)
}
