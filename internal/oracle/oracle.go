// Package oracle evaluates the hand-derived gradients of the quadratic form
// aᵀ Wᵀ W x without going through the autodiff engine.
//
// With M = x·aᵀ + (x·aᵀ)ᵀ:
//
//	d/dW  aᵀWᵀWx            = W·M
//	d/dW  aᵀW2ᵀW2x, W2 = W − lr·W·M  = (W2·M)·(I − lr·M)
//
// The second identity is what a differentiable SGD step has to reproduce.
//
// linalg.Matrix scales and adds in place; every function here copies
// before doing either, so arguments are never modified.
package oracle

import (
	"fmt"

	"github.com/unixpickle/num-analysis/linalg"
)

// FromData creates a rows×cols matrix holding a copy of row-major data.
func FromData(rows, cols int, data []float64) (*linalg.Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("oracle: invalid matrix size %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("oracle: %dx%d matrix needs %d values, got %d", rows, cols, rows*cols, len(data))
	}
	m := linalg.NewMatrix(rows, cols)
	copy(m.Data, data)
	return m, nil
}

// Outer returns the outer product u·vᵀ.
func Outer(u, v linalg.Vector) *linalg.Matrix {
	return linalg.NewMatrixColumn(u).Mul(linalg.NewMatrixColumn(v).Transpose())
}

// SymmetricOuter returns M = x·aᵀ + (x·aᵀ)ᵀ.
func SymmetricOuter(a, x linalg.Vector) *linalg.Matrix {
	xa := Outer(x, a)
	return xa.Transpose().Add(xa)
}

// QuadraticGrad returns d/dW aᵀWᵀWx = W·M.
func QuadraticGrad(w *linalg.Matrix, a, x linalg.Vector) *linalg.Matrix {
	return w.Mul(SymmetricOuter(a, x))
}

// UpdatedWeight returns W2 = W − lr·W·M, one SGD step on aᵀWᵀWx.
func UpdatedWeight(w *linalg.Matrix, a, x linalg.Vector, lr float64) *linalg.Matrix {
	return w.Copy().Add(QuadraticGrad(w, a, x).Scale(-lr))
}

// QuadraticSecondOrderGrad returns the gradient with respect to the
// original W of aᵀW2ᵀW2x, where W2 = UpdatedWeight(W, a, x, lr):
// (W2·M)·(I − lr·M).
func QuadraticSecondOrderGrad(w *linalg.Matrix, a, x linalg.Vector, lr float64) *linalg.Matrix {
	m := SymmetricOuter(a, x)
	w2 := UpdatedWeight(w, a, x, lr)
	jacobian := linalg.NewMatrixIdentity(m.Rows).Add(m.Copy().Scale(-lr))
	return w2.Mul(m).Mul(jacobian)
}
