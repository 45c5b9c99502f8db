package ops

import "gonum.org/v1/gonum/mat"

// Sum reduces every element of a into a 1×1 matrix.
func Sum(a mat.Matrix) *mat.Dense {
	return mat.NewDense(1, 1, []float64{mat.Sum(a)})
}

// SumBackward computes the input gradient for a full reduction.
//
// Every element contributed with weight 1, so each receives the scalar
// output gradient:
//
//	∂L/∂a[i,j] = ∂L/∂out[0,0]
func SumBackward(rows, cols int, outputGrad mat.Matrix) *mat.Dense {
	return Full(rows, cols, outputGrad.At(0, 0))
}
