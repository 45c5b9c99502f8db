package nn

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/born-ml/deep/internal/autodiff"
)

// MLP is a Model of Linear layers "fc1" ... "fcN" with ReLU between them and
// a linear output.
//
// Example: NewMLP([]int{11, 64, 64, 32, 1}) builds
// fc1 11→64, fc2 64→64, fc3 64→32, fc4 32→1.
type MLP struct {
	*Model
	order []string
}

// NewMLP creates an MLP for the given layer sizes (input first, output last).
// opts apply to every layer.
func NewMLP(sizes []int, opts ...LinearOption) (*MLP, error) {
	if len(sizes) < 2 {
		return nil, errors.Wrapf(ErrInvalidConfig, "mlp needs at least 2 sizes, got %d", len(sizes))
	}

	m := &MLP{Model: NewModel()}
	for i := 1; i < len(sizes); i++ {
		layer, err := NewLinear(sizes[i-1], sizes[i], opts...)
		if err != nil {
			return nil, errors.WithMessagef(err, "layer %d", i)
		}
		name := "fc" + strconv.Itoa(i)
		if err := m.Register(name, layer); err != nil {
			return nil, err
		}
		m.order = append(m.order, name)
	}
	return m, nil
}

// Forward runs every layer in order, applying ReLU after all but the last.
func (m *MLP) Forward(input *autodiff.Node) (*autodiff.Node, error) {
	x := input
	for i, name := range m.order {
		out, err := m.Call(name, x)
		if err != nil {
			return nil, err
		}
		if i < len(m.order)-1 {
			if out, err = autodiff.ReLU(out); err != nil {
				return nil, err
			}
		}
		x = out
	}
	return x, nil
}

// Depth returns the number of Linear layers.
func (m *MLP) Depth() int {
	return len(m.order)
}
