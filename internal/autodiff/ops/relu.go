package ops

import "gonum.org/v1/gonum/mat"

// ReLU computes max(x, 0) elementwise.
func ReLU(x mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, x)
	return &out
}

// ReLUBackward computes the input gradient for ReLU.
//
// The gradient is the output gradient masked by the forward input:
// 1 where input > 0, 0 otherwise. The mask is taken from the input, not the
// output, so an input of exactly 0 blocks the gradient.
func ReLUBackward(input, outputGrad mat.Matrix) *mat.Dense {
	mask := reluMask(input)

	var grad mat.Dense
	grad.MulElem(outputGrad, mask)
	return &grad
}

// reluMask creates a binary mask where input > 0.
func reluMask(input mat.Matrix) *mat.Dense {
	var mask mat.Dense
	mask.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	}, input)
	return &mask
}
