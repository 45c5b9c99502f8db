package ops

import "gonum.org/v1/gonum/mat"

// MSE computes mean((a - b)²) as a 1×1 matrix.
//
// Forward:
//
//	out = (1/N) Σ (a_ij - b_ij)²,  N = rows·cols
func MSE(a, b mat.Matrix) *mat.Dense {
	var diff mat.Dense
	diff.Sub(a, b)

	var sq mat.Dense
	sq.MulElem(&diff, &diff)

	rows, cols := diff.Dims()
	return mat.NewDense(1, 1, []float64{mat.Sum(&sq) / float64(rows*cols)})
}

// MSEBackward computes input gradients for mean squared error.
//
// Backward:
//
//	∂L/∂a = ∂L/∂out[0,0] · (2/N) · (a - b)
//	∂L/∂b = -∂L/∂a
func MSEBackward(a, b, outputGrad mat.Matrix) (gradA, gradB *mat.Dense) {
	rows, cols := a.Dims()
	scale := outputGrad.At(0, 0) * 2 / float64(rows*cols)

	gradA = new(mat.Dense)
	gradA.Sub(a, b)
	gradA.Scale(scale, gradA)

	return gradA, Negate(gradA)
}
