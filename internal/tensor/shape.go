package tensor

import (
	"fmt"
	"slices"
)

// Shape lists the size of each dimension. A nil or empty Shape is a scalar.
type Shape []int

// NumElements is the product of the dimensions, 1 for a scalar.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate rejects zero and negative dimensions.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether s and other have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of s.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// ComputeStrides returns the row-major strides of s: the stride of a
// dimension is the product of every dimension to its right.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// padLeft returns s prefixed with ones up to n dimensions.
func (s Shape) padLeft(n int) Shape {
	padded := make(Shape, n)
	offset := n - len(s)
	for i := range padded {
		if i < offset {
			padded[i] = 1
		} else {
			padded[i] = s[i-offset]
		}
	}
	return padded
}

// BroadcastShapes returns the NumPy broadcast of a and b, and whether
// either input has to be broadcast to reach it.
//
// The shorter shape is padded with leading ones. Aligned dimensions must
// then be equal or one of them must be 1.
//
//	(3, 1) and (3, 5) → (3, 5), true
//	(5)    and (3, 5) → (3, 5), true
//	(3, 5) and (3, 5) → (3, 5), false
//	(3, 4) and (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	n := max(len(a), len(b))
	pa, pb := a.padLeft(n), b.padLeft(n)

	out := make(Shape, n)
	needsBroadcast := len(a) != len(b)
	for i := range out {
		switch {
		case pa[i] == pb[i]:
			out[i] = pa[i]
		case pa[i] == 1:
			out[i] = pb[i]
			needsBroadcast = true
		case pb[i] == 1:
			out[i] = pa[i]
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, i, pa[i], pb[i])
		}
	}
	return out, needsBroadcast, nil
}
