package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/deep/internal/autodiff"
)

func TestPrimitives_Shapes(t *testing.T) {
	x := constant(t, fill(4, 3, 1))
	w := param(t, fill(5, 3, 0.5))
	b := param(t, fill(5, 1, 0.1))
	wT := autodiff.Must(autodiff.Transpose(w))

	tests := []struct {
		name  string
		build func() (*autodiff.Node, error)
		op    autodiff.OpKind
		rows  int
		cols  int
		arity int
	}{
		{"transpose", func() (*autodiff.Node, error) { return autodiff.Transpose(x) }, autodiff.OpTranspose, 3, 4, 1},
		{"matmul", func() (*autodiff.Node, error) { return autodiff.MatMul(x, wT) }, autodiff.OpMatMul, 4, 5, 2},
		{"relu", func() (*autodiff.Node, error) { return autodiff.ReLU(x) }, autodiff.OpReLU, 4, 3, 1},
		{"sum", func() (*autodiff.Node, error) { return autodiff.Sum(x) }, autodiff.OpSum, 1, 1, 1},
		{"add", func() (*autodiff.Node, error) { return autodiff.Add(x, x) }, autodiff.OpAdd, 4, 3, 2},
		{"subtract", func() (*autodiff.Node, error) { return autodiff.Subtract(w, w) }, autodiff.OpSubtract, 5, 3, 2},
		{"affine", func() (*autodiff.Node, error) { return autodiff.Affine(b, x, wT) }, autodiff.OpAffine, 4, 5, 3},
		{"mse", func() (*autodiff.Node, error) { return autodiff.MeanSquaredError(x, x) }, autodiff.OpMeanSquaredError, 1, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.build()
			require.NoError(t, err)

			rows, cols := n.Shape()
			assert.Equal(t, tt.rows, rows)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.op, n.Op())
			assert.Equal(t, tt.arity, n.NumOperands())
			assert.False(t, n.IsLeaf())
		})
	}
}

func TestPrimitives_ShapeMismatch(t *testing.T) {
	a := constant(t, fill(2, 3, 1))
	b := constant(t, fill(3, 2, 1))
	col := constant(t, fill(2, 1, 1))
	wide := constant(t, fill(2, 2, 1))

	tests := []struct {
		name  string
		build func() (*autodiff.Node, error)
	}{
		{"matmul inner dims", func() (*autodiff.Node, error) { return autodiff.MatMul(a, a) }},
		{"add", func() (*autodiff.Node, error) { return autodiff.Add(a, b) }},
		{"subtract", func() (*autodiff.Node, error) { return autodiff.Subtract(a, b) }},
		{"mse", func() (*autodiff.Node, error) { return autodiff.MeanSquaredError(a, b) }},
		{"affine inner dims", func() (*autodiff.Node, error) { return autodiff.Affine(col, a, a) }},
		{"affine bias not a column", func() (*autodiff.Node, error) { return autodiff.Affine(wide, a, b) }},
		{"affine bias rows", func() (*autodiff.Node, error) { return autodiff.Affine(constant(t, fill(3, 1, 0)), a, b) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.build()
			assert.Nil(t, n)
			assert.ErrorIs(t, err, autodiff.ErrShapeMismatch)
		})
	}
}

func TestPrimitives_NilOperand(t *testing.T) {
	a := constant(t, fill(2, 2, 1))

	_, err := autodiff.ReLU(nil)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.Add(a, nil)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.Affine(nil, a, a)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)
}

func TestPrimitives_OperandOrder(t *testing.T) {
	x := constant(t, dense(2, 4, 1, 2, 3, 4, 5, 6, 7, 8))
	w := param(t, dense(3, 4, 0, 1, -1, 1, 1, 0, 1, 1, 0, 2, 0, 1))

	y := autodiff.Must(autodiff.MatMul(x, autodiff.Must(autodiff.Transpose(w))))

	assert.Same(t, x, y.Operand(0))
	assert.Same(t, w, y.Operand(1).Operand(0))
	assertMatrix(t, dense(2, 3, 3, 8, 8, 7, 20, 20), y.Value())

	operands := y.Operands()
	operands[0] = nil
	assert.Same(t, x, y.Operand(0))
}
