package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
)

// Parameter represents a trainable parameter in a neural network.
//
// A Parameter pairs a name with a leaf node. Several Parameters may share the
// same node under different names (see Model.NamedParameters).
//
// Example:
//
//	weight, _ := nn.NewParameter("weight", mat.NewDense(5, 3, nil), true)
//
//	// Get gradient after backward pass
//	grad := weight.Grad()
type Parameter struct {
	name string         // Parameter name (e.g., "weight", "fc1.1")
	node *autodiff.Node // Leaf holding value and accumulated gradient
}

// NewParameter wraps value in a new leaf. Trainable leaves accumulate
// gradients; frozen ones are constants to the backward pass.
func NewParameter(name string, value mat.Matrix, trainable bool) (*Parameter, error) {
	node, err := autodiff.NewLeaf(value, trainable)
	if err != nil {
		return nil, err
	}
	return &Parameter{name: name, node: node}, nil
}

// Renamed returns a Parameter sharing p's node under a new name.
func (p *Parameter) Renamed(name string) *Parameter {
	return &Parameter{name: name, node: p.node}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Node returns the leaf node, for use as a graph operand.
func (p *Parameter) Node() *autodiff.Node {
	return p.node
}

// Value returns the parameter matrix. Optimizers update it in place.
func (p *Parameter) Value() *mat.Dense {
	return p.node.Value()
}

// Grad returns the accumulated gradient.
func (p *Parameter) Grad() *mat.Dense {
	return p.node.Grad()
}

// Trainable reports whether backward accumulates into this parameter.
func (p *Parameter) Trainable() bool {
	return p.node.RequiresGrad()
}

// ZeroGrad clears the gradient.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.node.ZeroGrad()
}

// ZeroGrad clears the gradients of every parameter in params.
func ZeroGrad(params []*Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
