// Package nn implements neural network modules on top of the autodiff graph.
//
// This package provides building blocks for constructing neural networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named trainable leaf node
//   - Linear: Fully connected layer
//   - ReLU: Activation module
//   - MSELoss: Mean squared error against a target matrix
//   - Sequential: Container for stacking layers
//   - Model: Named-layer registry with state dicts and checkpoints
//
// Every forward call builds new result nodes; parameters are the only nodes
// that live across iterations.
package nn

import (
	"github.com/born-ml/deep/internal/autodiff"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger networks:
//
//	model := nn.NewSequential(
//	    nn.MustLinear(11, 64, nn.WithRand(rng)),
//	    nn.NewReLU(),
//	    nn.MustLinear(64, 1, nn.WithRand(rng)),
//	)
type Module interface {
	// Forward computes the output node of the module for input.
	//
	// Linear expects [batch_size, in_features]. Shape errors are returned,
	// not panicked, and wrap autodiff.ErrShapeMismatch.
	Forward(input *autodiff.Node) (*autodiff.Node, error)

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without parameters (e.g., ReLU).
	Parameters() []*Parameter
}
