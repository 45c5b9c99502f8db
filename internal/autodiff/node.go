package autodiff

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff/ops"
)

// Node is a single point of the computation graph: a value, the gradient
// accumulated for it, and the operands it was computed from.
//
// Nodes are shared by pointer. A node may be an operand of many downstream
// results (fan-out), which makes the graph a DAG; edges always point from a
// result to operands created before it, so no cycle can form.
//
// After construction only the gradient buffer of a result node changes.
// Leaf values may be updated in place by optimizers (see Value and SetValue).
type Node struct {
	value    *mat.Dense
	grad     *mat.Dense
	leaf     bool
	op       OpKind
	operands []*Node
}

// NewNode is the validating constructor behind NewLeaf and NewResult.
//
// It fails with ErrInvalidGraph when:
//   - value is nil or empty
//   - a leaf has an op other than OpNone/OpAccumulateGrad, or has operands
//   - a result has a leaf op, an unknown op, the wrong operand count, or a nil operand
//
// The value is copied; the caller keeps ownership of the matrix it passed.
func NewNode(value mat.Matrix, leaf bool, op OpKind, operands ...*Node) (*Node, error) {
	if isNil(value) {
		return nil, errors.Wrap(ErrInvalidGraph, "nil value")
	}
	r, c := value.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrapf(ErrInvalidGraph, "%s: empty value", op)
	}

	if leaf {
		if !op.IsLeafKind() {
			return nil, errors.Wrapf(ErrInvalidGraph, "leaf cannot carry op %s", op)
		}
		if len(operands) != 0 {
			return nil, errors.Wrapf(ErrInvalidGraph, "leaf %s cannot have operands, got %d", op, len(operands))
		}
	} else {
		arity, ok := op.Arity()
		if !ok {
			return nil, errors.Wrapf(ErrInvalidGraph, "result cannot carry op %s", op)
		}
		if len(operands) != arity {
			return nil, errors.Wrapf(ErrInvalidGraph, "%s expects %d operands, got %d", op, arity, len(operands))
		}
		for i, o := range operands {
			if o == nil {
				return nil, invalidOperand(op, i)
			}
		}
	}

	return &Node{
		value:    ops.Clone(value),
		grad:     mat.NewDense(r, c, nil),
		leaf:     leaf,
		op:       op,
		operands: append([]*Node(nil), operands...),
	}, nil
}

// NewLeaf wraps user data in a leaf node. Trainable leaves (OpAccumulateGrad)
// collect gradients during backward; others (OpNone) stop propagation.
func NewLeaf(value mat.Matrix, trainable bool) (*Node, error) {
	op := OpNone
	if trainable {
		op = OpAccumulateGrad
	}
	return NewNode(value, true, op)
}

// NewConstant creates a leaf that never receives gradients.
func NewConstant(value mat.Matrix) (*Node, error) {
	return NewLeaf(value, false)
}

// NewParameter creates a trainable leaf.
func NewParameter(value mat.Matrix) (*Node, error) {
	return NewLeaf(value, true)
}

// NewResult creates a non-leaf node computed by op from operands.
// Operand order is significant: backward indexes operands positionally.
func NewResult(value mat.Matrix, op OpKind, operands ...*Node) (*Node, error) {
	return NewNode(value, false, op, operands...)
}

// Value returns the forward value. The matrix is owned by the node; callers
// may modify a leaf's value in place but must not change its shape.
func (n *Node) Value() *mat.Dense {
	return n.value
}

// Grad returns the gradient buffer, same shape as Value.
//
// For trainable leaves it holds the sum of every backward pass since the
// last ZeroGrad. For result nodes it holds the total gradient received in
// the most recent backward pass.
func (n *Node) Grad() *mat.Dense {
	return n.grad
}

// SetValue replaces a leaf value with a copy of m. The shape must not change.
func (n *Node) SetValue(m mat.Matrix) error {
	if !n.leaf {
		return errors.Wrapf(ErrInvalidGraph, "%s: cannot set the value of a result node", n.op)
	}
	if isNil(m) {
		return shapeError(n.op, "nil value, want %s", dims(n.value))
	}
	if r, c := m.Dims(); r != n.Rows() || c != n.Cols() {
		return shapeError(n.op, "set value %s, want %s", dims(m), dims(n.value))
	}
	n.value.Copy(m)
	return nil
}

// IsLeaf reports whether n was created from user data.
func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Op returns the node's operation tag.
func (n *Node) Op() OpKind {
	return n.op
}

// RequiresGrad reports whether backward propagates through n.
func (n *Node) RequiresGrad() bool {
	return n.op != OpNone
}

// Operands returns a copy of the operand list.
func (n *Node) Operands() []*Node {
	return append([]*Node(nil), n.operands...)
}

// Operand returns the i-th operand. It panics if i is out of range.
func (n *Node) Operand(i int) *Node {
	return n.operands[i]
}

// NumOperands returns the number of operands.
func (n *Node) NumOperands() int {
	return len(n.operands)
}

// Shape returns the value's dimensions.
func (n *Node) Shape() (rows, cols int) {
	return n.value.Dims()
}

// Rows returns the number of rows of the value.
func (n *Node) Rows() int {
	r, _ := n.value.Dims()
	return r
}

// Cols returns the number of columns of the value.
func (n *Node) Cols() int {
	_, c := n.value.Dims()
	return c
}

// Size returns rows*cols.
func (n *Node) Size() int {
	r, c := n.value.Dims()
	return r * c
}

// ZeroGrad resets the gradient to zeros of the value's shape.
func (n *Node) ZeroGrad() {
	r, c := n.value.Dims()
	if gr, gc := n.grad.Dims(); gr != r || gc != c {
		n.grad = mat.NewDense(r, c, nil)
		return
	}
	n.grad.Zero()
}

// Scalar returns the single element of a 1×1 value.
func (n *Node) Scalar() (float64, error) {
	if r, c := n.Shape(); r != 1 || c != 1 {
		return 0, shapeError(n.op, "scalar read of %s value", dims(n.value))
	}
	return n.value.At(0, 0), nil
}

// Must returns n and panics on err. It suits graphs whose shapes are fixed
// by construction, such as tests and demos:
//
//	loss := autodiff.Must(autodiff.Sum(autodiff.Must(autodiff.ReLU(x))))
func Must(n *Node, err error) *Node {
	if err != nil {
		panic(err)
	}
	return n
}
