package ops

import "gonum.org/v1/gonum/mat"

// Sub computes a - b elementwise.
func Sub(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Sub(a, b)
	return &out
}

// SubBackward computes input gradients for subtraction.
//
// Backward pass:
//   - d(a-b)/da = 1, so grad_a = outputGrad
//   - d(a-b)/db = -1, so grad_b = -outputGrad
func SubBackward(outputGrad mat.Matrix) (gradA, gradB *mat.Dense) {
	return Clone(outputGrad), Negate(outputGrad)
}
