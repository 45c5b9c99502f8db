package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
)

func dense(rows, cols int, data ...float64) *mat.Dense {
	return mat.NewDense(rows, cols, data)
}

func constant(t *testing.T, m mat.Matrix) *autodiff.Node {
	t.Helper()
	n, err := autodiff.NewConstant(m)
	require.NoError(t, err)
	return n
}

func param(t *testing.T, m mat.Matrix) *autodiff.Node {
	t.Helper()
	n, err := autodiff.NewParameter(m)
	require.NoError(t, err)
	return n
}

func assertMatrix(t *testing.T, want, got mat.Matrix) {
	t.Helper()
	assert.True(t, mat.EqualApprox(want, got, 1e-6),
		"want\n%v\ngot\n%v", mat.Formatted(want), mat.Formatted(got))
}

func negated(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(-1, m)
	return &out
}

func fill(rows, cols int, v float64) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	m.Apply(func(_, _ int, _ float64) float64 { return v }, m)
	return m
}
