package ops

import "gonum.org/v1/gonum/mat"

// MatMul computes a @ b.
func MatMul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

// MatMulBackward computes input gradients for matrix multiplication.
//
// Backward pass:
//   - d(A@B)/dA = outputGrad @ Bᵗ
//   - d(A@B)/dB = Aᵗ @ outputGrad
func MatMulBackward(a, b, outputGrad mat.Matrix) (gradA, gradB *mat.Dense) {
	gradA = new(mat.Dense)
	gradA.Mul(outputGrad, b.T())

	gradB = new(mat.Dense)
	gradB.Mul(a.T(), outputGrad)

	return gradA, gradB
}
