// Package ops holds the forward values and local gradient rules of every
// differentiable primitive, expressed on plain gonum matrices.
//
// Nothing here knows about graph nodes: the autodiff package checks operand
// shapes, wires nodes together and decides which rule to fire. Each rule
// takes the output gradient (dL/d(out)) and returns one gradient per operand,
// in operand order.
//
// Supported operations:
//   - Transpose: d(aᵗ)/da routes the gradient back transposed
//   - MatMul: d(A@B)/dA = grad@Bᵗ, d(A@B)/dB = Aᵗ@grad
//   - ReLU: d(ReLU(x))/dx = 1 if x > 0, else 0
//   - Sum: every input element receives the scalar output gradient
//   - Add, Sub: gradient flows unchanged (negated for the subtrahend)
//   - Affine: bias + x@W, bias broadcast over rows
//   - MSE: mean((a-b)²)
//
// All functions assume their operands already passed the shape checks of the
// caller; gonum panics on non-conformant operands.
package ops

import "gonum.org/v1/gonum/mat"

// Clone returns a freshly allocated copy of m.
func Clone(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.CloneFrom(m)
	return &out
}

// Full returns a rows×cols matrix with every element set to v.
func Full(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

// Negate returns -m.
func Negate(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(-1, m)
	return &out
}
