package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBackward_UnknownOpKind(t *testing.T) {
	a, err := NewParameter(mat.NewDense(1, 1, []float64{2}))
	require.NoError(t, err)

	// NewResult refuses unknown kinds, so build the node by hand.
	n := &Node{
		value:    mat.NewDense(1, 1, []float64{2}),
		grad:     mat.NewDense(1, 1, nil),
		op:       OpKind(99),
		operands: []*Node{a},
	}

	assert.ErrorIs(t, n.Backward(), ErrUnsupportedOperation)
	assert.ErrorIs(t, n.BackwardPerEdge(mat.NewDense(1, 1, []float64{1})), ErrUnsupportedOperation)
	assert.Zero(t, a.Grad().At(0, 0))
}

func TestLocalGrads_LeafKinds(t *testing.T) {
	for _, op := range []OpKind{OpNone, OpAccumulateGrad} {
		n := &Node{value: mat.NewDense(1, 1, nil), grad: mat.NewDense(1, 1, nil), leaf: true, op: op}
		_, err := n.localGrads(mat.NewDense(1, 1, nil))
		assert.ErrorIs(t, err, ErrUnsupportedOperation, op.String())
	}
}

func TestConsumersFirst_OrdersBeforeOperands(t *testing.T) {
	x, err := NewParameter(mat.NewDense(1, 2, []float64{1, -1}))
	require.NoError(t, err)
	relu := Must(ReLU(x))
	add := Must(Add(x, relu))
	root := Must(Sum(add))

	order := consumersFirst(root, nil)
	require.Len(t, order, 4)

	pos := make(map[*Node]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for _, n := range order {
		for _, o := range n.operands {
			assert.Less(t, pos[n], pos[o], "%s must precede %s", n.op, o.op)
		}
	}
}
