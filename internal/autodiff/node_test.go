package autodiff_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
)

var resultKinds = []autodiff.OpKind{
	autodiff.OpTranspose,
	autodiff.OpMatMul,
	autodiff.OpReLU,
	autodiff.OpSum,
	autodiff.OpAdd,
	autodiff.OpAffine,
	autodiff.OpSubtract,
	autodiff.OpMeanSquaredError,
}

func TestNode_ShapeAndSize(t *testing.T) {
	n := constant(t, fill(5, 7, 0.5))

	rows, cols := n.Shape()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 7, cols)
	assert.Equal(t, 35, n.Size())
	assert.True(t, n.IsLeaf())
	assert.Equal(t, autodiff.OpNone, n.Op())
	assert.False(t, n.RequiresGrad())
	assertMatrix(t, mat.NewDense(5, 7, nil), n.Grad())
}

func TestNewLeaf_Trainable(t *testing.T) {
	n, err := autodiff.NewLeaf(dense(1, 2, 1, 2), true)
	require.NoError(t, err)

	assert.Equal(t, autodiff.OpAccumulateGrad, n.Op())
	assert.True(t, n.RequiresGrad())
	assert.Zero(t, n.NumOperands())
}

func TestNewLeaf_CopiesValue(t *testing.T) {
	src := dense(1, 2, 1, 2)
	n := param(t, src)

	src.Set(0, 0, 100)
	assert.Equal(t, 1.0, n.Value().At(0, 0))
}

func TestNewNode_LeafInvariant(t *testing.T) {
	shapes := [][2]int{{1, 1}, {2, 3}, {4, 1}, {1, 6}}
	other := constant(t, dense(1, 1, 0))

	for _, s := range shapes {
		value := fill(s[0], s[1], 1)

		for _, op := range resultKinds {
			t.Run(fmt.Sprintf("%dx%d/%s", s[0], s[1], op), func(t *testing.T) {
				_, err := autodiff.NewNode(value, true, op)
				assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)
			})
		}

		for _, op := range []autodiff.OpKind{autodiff.OpNone, autodiff.OpAccumulateGrad} {
			_, err := autodiff.NewNode(value, true, op, other)
			assert.ErrorIs(t, err, autodiff.ErrInvalidGraph, "leaf %s with operands", op)

			_, err = autodiff.NewNode(value, true, op)
			assert.NoError(t, err)
		}
	}
}

func TestNewResult_ArityInvariant(t *testing.T) {
	a := constant(t, dense(1, 1, 1))

	for _, count := range []int{0, 1, 3, 4} {
		operands := make([]*autodiff.Node, count)
		for i := range operands {
			operands[i] = a
		}
		_, err := autodiff.NewResult(dense(1, 1, 1), autodiff.OpMatMul, operands...)
		assert.ErrorIs(t, err, autodiff.ErrInvalidGraph, "MatMul with %d operands", count)
	}

	n, err := autodiff.NewResult(dense(1, 1, 1), autodiff.OpMatMul, a, a)
	require.NoError(t, err)
	assert.False(t, n.IsLeaf())
	assert.Equal(t, 2, n.NumOperands())
}

func TestNewResult_RejectsLeafKindsAndNil(t *testing.T) {
	a := constant(t, dense(1, 1, 1))

	_, err := autodiff.NewResult(dense(1, 1, 1), autodiff.OpNone)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.NewResult(dense(1, 1, 1), autodiff.OpAccumulateGrad)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.NewResult(dense(1, 1, 1), autodiff.OpKind(200), a)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.NewResult(dense(1, 1, 1), autodiff.OpAdd, a, nil)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.NewResult(nil, autodiff.OpReLU, a)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.NewLeaf((*mat.Dense)(nil), true)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)

	_, err = autodiff.NewLeaf(&mat.Dense{}, false)
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)
}

func TestZeroGrad_Idempotent(t *testing.T) {
	w := param(t, dense(2, 3, 1, -2, 3, 0.5, 0, -1))
	sum := autodiff.Must(autodiff.Sum(w))

	for _, scale := range []float64{1, -3.5, 1e6} {
		require.NoError(t, sum.BackwardScalar(scale))
		w.ZeroGrad()
		assertMatrix(t, mat.NewDense(2, 3, nil), w.Grad())

		w.ZeroGrad()
		assertMatrix(t, mat.NewDense(2, 3, nil), w.Grad())
	}
}

func TestSetValue(t *testing.T) {
	w := param(t, dense(2, 2, 1, 2, 3, 4))

	require.NoError(t, w.SetValue(dense(2, 2, 5, 6, 7, 8)))
	assertMatrix(t, dense(2, 2, 5, 6, 7, 8), w.Value())

	err := w.SetValue(dense(1, 4, 1, 2, 3, 4))
	assert.ErrorIs(t, err, autodiff.ErrShapeMismatch)

	assert.ErrorIs(t, w.SetValue(nil), autodiff.ErrShapeMismatch)
	assert.ErrorIs(t, w.SetValue((*mat.Dense)(nil)), autodiff.ErrShapeMismatch)
	assertMatrix(t, dense(2, 2, 5, 6, 7, 8), w.Value())

	sum := autodiff.Must(autodiff.Sum(w))
	err = sum.SetValue(dense(1, 1, 0))
	assert.ErrorIs(t, err, autodiff.ErrInvalidGraph)
}

func TestScalar(t *testing.T) {
	y := constant(t, dense(3, 4, 0, 1, 1, 0, 1, 2, -1, 1, 0.5, 0.4, 1, 2))

	v, err := autodiff.Must(autodiff.Sum(y)).Scalar()
	require.NoError(t, err)
	assert.InDelta(t, 8.9, v, 1e-12)

	_, err = y.Scalar()
	assert.ErrorIs(t, err, autodiff.ErrShapeMismatch)
}

func TestMust_Panics(t *testing.T) {
	a := constant(t, dense(1, 2, 1, 2))
	assert.Panics(t, func() {
		autodiff.Must(autodiff.MatMul(a, a))
	})
}

func TestOpKind_String(t *testing.T) {
	assert.Equal(t, "AffineAddMatMul", autodiff.OpAffine.String())
	assert.Equal(t, "Relu", autodiff.OpReLU.String())
	assert.Equal(t, "OpKind(42)", autodiff.OpKind(42).String())
}

func TestErrors_NameOpAndShapes(t *testing.T) {
	a := constant(t, dense(2, 3, 1, 2, 3, 4, 5, 6))
	b := constant(t, dense(2, 2, 1, 2, 3, 4))

	_, err := autodiff.MatMul(a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autodiff.ErrShapeMismatch))
	assert.Contains(t, err.Error(), "MatMul")
	assert.Contains(t, err.Error(), "2x3")
	assert.Contains(t, err.Error(), "2x2")
}
