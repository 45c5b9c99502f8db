package ops

import "gonum.org/v1/gonum/mat"

// Transpose materializes aᵗ.
//
// gonum's T() is a view over the original storage; graph values must own
// their data, so the view is copied.
func Transpose(a mat.Matrix) *mat.Dense {
	return Clone(a.T())
}

// TransposeBackward computes the input gradient for transpose.
//
// Backward:
//
//	∂L/∂a = (∂L/∂out)ᵗ
func TransposeBackward(outputGrad mat.Matrix) *mat.Dense {
	return Clone(outputGrad.T())
}
