package ops

import "gonum.org/v1/gonum/mat"

// Affine computes x @ W with the column vector bias added to every row.
//
// Shapes: bias [n, 1], x [m, k], W [k, n] -> out [m, n].
func Affine(bias, x, w mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(x, w)

	rows, cols := out.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, out.At(i, j)+bias.At(j, 0))
		}
	}
	return &out
}

// AffineBackward computes gradients for bias, x and W, in that order.
//
// Backward pass:
//   - ∂L/∂bias = column sums of outputGrad, as an [n, 1] column
//   - ∂L/∂x = outputGrad @ Wᵗ
//   - ∂L/∂W = xᵗ @ outputGrad
func AffineBackward(x, w, outputGrad mat.Matrix) (gradBias, gradX, gradW *mat.Dense) {
	gradBias = ColumnSums(outputGrad)

	gradX = new(mat.Dense)
	gradX.Mul(outputGrad, w.T())

	gradW = new(mat.Dense)
	gradW.Mul(x.T(), outputGrad)

	return gradBias, gradX, gradW
}

// ColumnSums returns an [cols, 1] matrix holding the sum of each column of m.
func ColumnSums(m mat.Matrix) *mat.Dense {
	rows, cols := m.Dims()
	sums := mat.NewDense(cols, 1, nil)
	for j := 0; j < cols; j++ {
		var s float64
		for i := 0; i < rows; i++ {
			s += m.At(i, j)
		}
		sums.Set(j, 0, s)
	}
	return sums
}
