package autodiff

import (
	"github.com/born-ml/deep/internal/autodiff/ops"
)

// Every primitive checks operand shapes, computes the forward value eagerly
// and returns a new result node wired to its operands in the listed order.

// Transpose returns aᵗ.
func Transpose(a *Node) (*Node, error) {
	if err := checkOperands(OpTranspose, a); err != nil {
		return nil, err
	}
	return NewResult(ops.Transpose(a.value), OpTranspose, a)
}

// MatMul returns a @ b. Requires a.cols == b.rows.
func MatMul(a, b *Node) (*Node, error) {
	if err := checkOperands(OpMatMul, a, b); err != nil {
		return nil, err
	}
	if a.Cols() != b.Rows() {
		return nil, shapeError(OpMatMul, "cannot multiply %s by %s", dims(a.value), dims(b.value))
	}
	return NewResult(ops.MatMul(a.value, b.value), OpMatMul, a, b)
}

// ReLU returns max(a, 0) elementwise.
func ReLU(a *Node) (*Node, error) {
	if err := checkOperands(OpReLU, a); err != nil {
		return nil, err
	}
	return NewResult(ops.ReLU(a.value), OpReLU, a)
}

// Sum returns a 1×1 node holding the total of all elements of a.
func Sum(a *Node) (*Node, error) {
	if err := checkOperands(OpSum, a); err != nil {
		return nil, err
	}
	return NewResult(ops.Sum(a.value), OpSum, a)
}

// Add returns a + b. Shapes must be identical.
func Add(a, b *Node) (*Node, error) {
	if err := checkSameShape(OpAdd, a, b); err != nil {
		return nil, err
	}
	return NewResult(ops.Add(a.value, b.value), OpAdd, a, b)
}

// Subtract returns a - b. Shapes must be identical.
func Subtract(a, b *Node) (*Node, error) {
	if err := checkSameShape(OpSubtract, a, b); err != nil {
		return nil, err
	}
	return NewResult(ops.Sub(a.value, b.value), OpSubtract, a, b)
}

// Affine returns x @ w with bias added to every row.
//
// Shapes: bias [n, 1], x [m, k], w [k, n]; the result is [m, n].
// Operands are stored as (bias, x, w).
func Affine(bias, x, w *Node) (*Node, error) {
	if err := checkOperands(OpAffine, bias, x, w); err != nil {
		return nil, err
	}
	if x.Cols() != w.Rows() {
		return nil, shapeError(OpAffine, "cannot multiply x %s by w %s", dims(x.value), dims(w.value))
	}
	if bias.Cols() != 1 {
		return nil, shapeError(OpAffine, "bias must be a column, got %s", dims(bias.value))
	}
	if w.Cols() != bias.Rows() {
		return nil, shapeError(OpAffine, "bias %s does not match w %s, want %dx1",
			dims(bias.value), dims(w.value), w.Cols())
	}
	return NewResult(ops.Affine(bias.value, x.value, w.value), OpAffine, bias, x, w)
}

// MeanSquaredError returns a 1×1 node holding mean((a - b)²).
// Shapes must be identical.
func MeanSquaredError(a, b *Node) (*Node, error) {
	if err := checkSameShape(OpMeanSquaredError, a, b); err != nil {
		return nil, err
	}
	return NewResult(ops.MSE(a.value, b.value), OpMeanSquaredError, a, b)
}

func checkOperands(op OpKind, operands ...*Node) error {
	for i, o := range operands {
		if o == nil {
			return invalidOperand(op, i)
		}
	}
	return nil
}

func checkSameShape(op OpKind, a, b *Node) error {
	if err := checkOperands(op, a, b); err != nil {
		return err
	}
	ar, ac := a.Shape()
	br, bc := b.Shape()
	if ar != br || ac != bc {
		return shapeError(op, "operands %s and %s differ", dims(a.value), dims(b.value))
	}
	return nil
}
