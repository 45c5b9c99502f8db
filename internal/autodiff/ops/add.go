package ops

import "gonum.org/v1/gonum/mat"

// Add computes a + b elementwise.
func Add(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Add(a, b)
	return &out
}

// AddBackward computes input gradients for addition.
// Since d(a+b)/da = d(a+b)/db = 1, the gradient flows equally to both inputs.
// Each operand gets its own copy so later accumulation cannot alias.
func AddBackward(outputGrad mat.Matrix) (gradA, gradB *mat.Dense) {
	return Clone(outputGrad), Clone(outputGrad)
}
