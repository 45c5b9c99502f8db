package nn

import (
	"github.com/born-ml/deep/internal/autodiff"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Example:
//
//	relu := nn.NewReLU()
//	output, err := relu.Forward(input) // All negative values become 0
type ReLU struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input *autodiff.Node) (*autodiff.Node, error) {
	return autodiff.ReLU(input)
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}
