package tensor

import "math"

// AllClose reports whether a and b have the same shape and every pair of
// elements differs by at most atol.
func AllClose(a, b *RawTensor, atol float64) bool {
	if !a.Shape().Equal(b.Shape()) {
		return false
	}
	for i := 0; i < a.NumElements(); i++ {
		if math.Abs(a.Float64At(i)-b.Float64At(i)) > atol {
			return false
		}
	}
	return true
}

// AllClose reports whether t and other match elementwise within atol.
func (t *Tensor[T, B]) AllClose(other *Tensor[T, B], atol float64) bool {
	return AllClose(t.raw, other.raw, atol)
}
