package nn

import (
	"github.com/pkg/errors"

	"github.com/born-ml/deep/internal/autodiff"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.MustLinear(11, 64, nn.WithRand(rng)),
//	    nn.NewReLU(),
//	    nn.MustLinear(64, 1, nn.WithRand(rng)),
//	)
//
//	output, err := model.Forward(input)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward applies all modules in sequence. The first error stops the chain
// and names the failing module's position.
func (s *Sequential) Forward(input *autodiff.Node) (*autodiff.Node, error) {
	output := input
	for i, module := range s.modules {
		next, err := module.Forward(output)
		if err != nil {
			return nil, errors.WithMessagef(err, "sequential module %d", i)
		}
		output = next
	}
	return output, nil
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}
