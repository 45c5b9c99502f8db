package nn

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/btree"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
	"github.com/born-ml/deep/internal/autodiff/ops"
	"github.com/born-ml/deep/internal/serialization"
)

type namedLayer struct {
	name  string
	layer Module
}

// Model is a registry of named layers.
//
// Layers are kept ordered by name, so NamedParameters, StateDict and
// ParametersInfo are deterministic. Parameter names are "<layer>.<n>" with n
// counting a layer's parameters from 1 (for Linear: 1 is the weight, 2 the
// bias).
//
// Model has no forward pass of its own. Embed it and define Forward:
//
//	type Regressor struct{ *nn.Model }
//
//	func (r Regressor) Forward(x *autodiff.Node) (*autodiff.Node, error) {
//	    h, err := r.Call("fc1", x)
//	    ...
//	}
type Model struct {
	layers *btree.BTreeG[namedLayer]
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		layers: btree.NewG(2, func(a, b namedLayer) bool {
			return a.name < b.name
		}),
	}
}

// Register adds layer under name. Names must be unique and must not contain
// '/' so they stay valid checkpoint keys. "optimizer" and names under it are
// reserved for optimizer buffers in checkpoints.
func (m *Model) Register(name string, layer Module) error {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return errors.Wrapf(ErrInvalidConfig, "invalid layer name %q", name)
	}
	if strings.HasPrefix(name+".", optimizerPrefix) {
		return errors.Wrapf(ErrInvalidConfig, "layer name %q is reserved", name)
	}
	if layer == nil {
		return errors.Wrapf(ErrInvalidConfig, "layer %q is nil", name)
	}
	if m.layers.Has(namedLayer{name: name}) {
		return errors.Wrapf(ErrDuplicateLayer, "%q", name)
	}
	m.layers.ReplaceOrInsert(namedLayer{name: name, layer: layer})
	return nil
}

// Layer returns the layer registered under name.
func (m *Model) Layer(name string) (Module, bool) {
	item, ok := m.layers.Get(namedLayer{name: name})
	return item.layer, ok
}

// Call runs the forward pass of the named layer.
func (m *Model) Call(name string, input *autodiff.Node) (*autodiff.Node, error) {
	layer, ok := m.Layer(name)
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "layer %q", name)
	}
	out, err := layer.Forward(input)
	if err != nil {
		return nil, errors.WithMessagef(err, "layer %q", name)
	}
	return out, nil
}

// Forward fails: a bare Model does not know how its layers connect.
// Types embedding Model provide their own Forward.
func (m *Model) Forward(*autodiff.Node) (*autodiff.Node, error) {
	return nil, errors.Wrap(ErrInvalidConfig, "model has no forward pass")
}

// Names returns the layer names in order.
func (m *Model) Names() []string {
	names := make([]string, 0, m.layers.Len())
	m.layers.Ascend(func(item namedLayer) bool {
		names = append(names, item.name)
		return true
	})
	return names
}

// Len returns the number of registered layers.
func (m *Model) Len() int {
	return m.layers.Len()
}

// NamedParameters returns every layer parameter renamed "<layer>.<n>".
// The returned Parameters share nodes with the layers.
func (m *Model) NamedParameters() []*Parameter {
	var params []*Parameter
	m.layers.Ascend(func(item namedLayer) bool {
		for i, p := range item.layer.Parameters() {
			params = append(params, p.Renamed(item.name+"."+strconv.Itoa(i+1)))
		}
		return true
	})
	return params
}

// Parameters returns the same nodes as NamedParameters.
func (m *Model) Parameters() []*Parameter {
	return m.NamedParameters()
}

// ParameterInfo describes one named parameter.
type ParameterInfo struct {
	Name string
	Rows int
	Cols int
}

// ParametersInfo summarizes a model's parameters.
type ParametersInfo struct {
	Parameters []ParameterInfo
	Total      int // total number of scalar values
}

// ParametersInfo lists each parameter's shape and the total element count.
func (m *Model) ParametersInfo() ParametersInfo {
	var info ParametersInfo
	for _, p := range m.NamedParameters() {
		rows, cols := p.Node().Shape()
		info.Parameters = append(info.Parameters, ParameterInfo{Name: p.Name(), Rows: rows, Cols: cols})
		info.Total += rows * cols
	}
	return info
}

// WriteTo writes one line per parameter and a total line.
func (info ParametersInfo) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, p := range info.Parameters {
		fmt.Fprintf(&b, "%s: shape (%d, %d)\n", p.Name, p.Rows, p.Cols)
	}
	fmt.Fprintf(&b, "Total: %d parameters\n", info.Total)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// StateDict returns a copy of every parameter value, keyed by its name.
func (m *Model) StateDict() map[string]*mat.Dense {
	state := make(map[string]*mat.Dense)
	for _, p := range m.NamedParameters() {
		state[p.Name()] = ops.Clone(p.Value())
	}
	return state
}

// LoadStateDict copies values from state into the model's parameters.
//
// Every parameter must be present with a matching shape; the model is left
// untouched otherwise. Extra keys in state are ignored.
func (m *Model) LoadStateDict(state map[string]*mat.Dense) error {
	params := m.NamedParameters()
	for _, p := range params {
		v, ok := state[p.Name()]
		if !ok || v == nil {
			return errors.Wrapf(ErrKeyNotFound, "%q", p.Name())
		}
		vr, vc := v.Dims()
		if r, c := p.Node().Shape(); vr != r || vc != c {
			return errors.Wrapf(autodiff.ErrShapeMismatch,
				"%q: state has %dx%d, model has %dx%d", p.Name(), vr, vc, r, c)
		}
	}
	for _, p := range params {
		if err := p.Node().SetValue(state[p.Name()]); err != nil {
			return errors.WithMessagef(err, "load %q", p.Name())
		}
	}
	return nil
}

// Save writes the state dict to path in .deep format.
func (m *Model) Save(path string) error {
	return serialization.WriteFile(path, m.StateDict(), serialization.Header{
		ModelType: "Model",
		Metadata:  map[string]string{"layers": strings.Join(m.Names(), ",")},
	})
}

// Load reads a state dict from path and loads it into the model.
func (m *Model) Load(path string) error {
	state, _, err := serialization.ReadFile(path)
	if err != nil {
		return err
	}
	return m.LoadStateDict(state)
}
