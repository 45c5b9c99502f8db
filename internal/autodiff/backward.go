package autodiff

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff/ops"
)

// Backward propagates a gradient of 1 from a scalar (1×1) node, typically a
// loss. It fails with ErrShapeMismatch if n is not 1×1.
func (n *Node) Backward() error {
	return n.BackwardScalar(1)
}

// BackwardScalar propagates the 1×1 gradient [[s]] from a scalar node.
func (n *Node) BackwardScalar(s float64) error {
	if r, c := n.Shape(); r != 1 || c != 1 {
		return shapeError(n.op, "implicit gradient needs a 1x1 value, got %s", dims(n.value))
	}
	return n.BackwardWith(mat.NewDense(1, 1, []float64{s}))
}

// BackwardWith propagates grad (dL/dn) to every node reachable from n.
//
// Algorithm:
//  1. Constants (OpNone) stop immediately; nothing flows through them.
//  2. Order the reachable graph so each node comes after all its consumers.
//  3. Seed n with grad, then visit nodes in that order. A node's incoming
//     contributions are summed before its rule fires, so every rule fires
//     exactly once no matter how many paths reach the node.
//  4. Trainable leaves add their total into Grad (+=). Result nodes store the
//     total they received in this pass.
//
// On error the pass stops where it failed; buffers already written keep their
// partial state and should not be trusted.
func (n *Node) BackwardWith(grad mat.Matrix) error {
	if n.op == OpNone {
		return nil
	}
	if err := n.checkGrad(grad); err != nil {
		return err
	}

	pending := map[*Node]*mat.Dense{n: ops.Clone(grad)}
	for _, node := range consumersFirst(n, (*Node).RequiresGrad) {
		g, ok := pending[node]
		if !ok {
			continue
		}
		delete(pending, node)

		if err := node.checkGrad(g); err != nil {
			return err
		}
		if node.op == OpAccumulateGrad {
			node.grad.Add(node.grad, g)
			continue
		}
		node.grad.Copy(g)

		grads, err := node.localGrads(g)
		if err != nil {
			return err
		}
		for i, operand := range node.operands {
			if operand.op == OpNone {
				continue
			}
			if acc, ok := pending[operand]; ok {
				if err := operand.checkGrad(grads[i]); err != nil {
					return err
				}
				acc.Add(acc, grads[i])
			} else {
				pending[operand] = grads[i]
			}
		}
	}
	return nil
}

// BackwardPerEdge propagates grad by recursing once per incoming edge.
//
// The final gradients equal those of BackwardWith because every contribution
// is added, never assigned. Work grows with the number of distinct paths
// through shared nodes, which can be exponential on stacked diamonds.
func (n *Node) BackwardPerEdge(grad mat.Matrix) error {
	if n.op == OpNone {
		return nil
	}
	if err := n.checkGrad(grad); err != nil {
		return err
	}
	for _, node := range consumersFirst(n, (*Node).RequiresGrad) {
		if !node.leaf {
			node.grad.Zero()
		}
	}
	return n.backwardEdge(ops.Clone(grad))
}

func (n *Node) backwardEdge(g *mat.Dense) error {
	if n.op == OpNone {
		return nil
	}
	if err := n.checkGrad(g); err != nil {
		return err
	}
	n.grad.Add(n.grad, g)
	if n.op == OpAccumulateGrad {
		return nil
	}

	grads, err := n.localGrads(g)
	if err != nil {
		return err
	}
	for i, operand := range n.operands {
		if err := operand.backwardEdge(grads[i]); err != nil {
			return err
		}
	}
	return nil
}

// localGrads applies n's gradient rule, returning one gradient per operand.
func (n *Node) localGrads(g *mat.Dense) ([]*mat.Dense, error) {
	switch n.op {
	case OpTranspose:
		return []*mat.Dense{ops.TransposeBackward(g)}, nil

	case OpMatMul:
		a, b := n.operands[0], n.operands[1]
		gradA, gradB := ops.MatMulBackward(a.value, b.value, g)
		return []*mat.Dense{gradA, gradB}, nil

	case OpReLU:
		return []*mat.Dense{ops.ReLUBackward(n.operands[0].value, g)}, nil

	case OpSum:
		r, c := n.operands[0].Shape()
		return []*mat.Dense{ops.SumBackward(r, c, g)}, nil

	case OpAdd:
		gradA, gradB := ops.AddBackward(g)
		return []*mat.Dense{gradA, gradB}, nil

	case OpSubtract:
		gradA, gradB := ops.SubBackward(g)
		return []*mat.Dense{gradA, gradB}, nil

	case OpAffine:
		x, w := n.operands[1], n.operands[2]
		gradBias, gradX, gradW := ops.AffineBackward(x.value, w.value, g)
		return []*mat.Dense{gradBias, gradX, gradW}, nil

	case OpMeanSquaredError:
		a, b := n.operands[0], n.operands[1]
		gradA, gradB := ops.MSEBackward(a.value, b.value, g)
		return []*mat.Dense{gradA, gradB}, nil

	case OpNone, OpAccumulateGrad:
		return nil, errors.Wrapf(ErrUnsupportedOperation, "%s has no local gradient rule", n.op)

	default:
		return nil, errors.Wrapf(ErrUnsupportedOperation, "no backward rule for %s", n.op)
	}
}

func (n *Node) checkGrad(g mat.Matrix) error {
	if isNil(g) {
		return shapeError(n.op, "nil incoming gradient, want %s", dims(n.value))
	}
	gr, gc := g.Dims()
	if r, c := n.Shape(); gr != r || gc != c {
		return shapeError(n.op, "incoming gradient %s, want %s", dims(g), dims(n.value))
	}
	return nil
}
