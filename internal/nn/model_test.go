package nn_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
	"github.com/born-ml/deep/internal/nn"
)

func twoLayerModel(t *testing.T, seed uint64) *nn.Model {
	t.Helper()
	rng := nn.NewRand(seed)
	m := nn.NewModel()
	require.NoError(t, m.Register("fc2", nn.MustLinear(4, 1, nn.WithRand(rng))))
	require.NoError(t, m.Register("fc1", nn.MustLinear(3, 4, nn.WithRand(rng))))
	return m
}

func TestModel_Registry(t *testing.T) {
	m := twoLayerModel(t, 1)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"fc1", "fc2"}, m.Names())

	layer, ok := m.Layer("fc1")
	require.True(t, ok)
	assert.Equal(t, 3, layer.(*nn.Linear).InFeatures())

	_, ok = m.Layer("fc3")
	assert.False(t, ok)

	assert.ErrorIs(t, m.Register("fc1", nn.NewReLU()), nn.ErrDuplicateLayer)
	assert.ErrorIs(t, m.Register("", nn.NewReLU()), nn.ErrInvalidConfig)
	assert.ErrorIs(t, m.Register("a/b", nn.NewReLU()), nn.ErrInvalidConfig)
	assert.ErrorIs(t, m.Register("relu", nil), nn.ErrInvalidConfig)
	assert.ErrorIs(t, m.Register("optimizer", nn.NewReLU()), nn.ErrInvalidConfig)
	assert.ErrorIs(t, m.Register("optimizer.fc", nn.NewReLU()), nn.ErrInvalidConfig)
	assert.Equal(t, 2, m.Len())
}

func TestCheckpoint_LayerNamedLikeOptimizer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.deep")
	m := nn.NewModel()
	require.NoError(t, m.Register("optimizers", nn.MustLinear(2, 1, nn.WithRand(nn.NewRand(3)))))

	require.NoError(t, (&nn.Checkpoint{Model: m, Epoch: 2}).Save(path))

	restored := nn.NewModel()
	require.NoError(t, restored.Register("optimizers", nn.MustLinear(2, 1, nn.WithRand(nn.NewRand(4)))))
	got, err := nn.LoadCheckpoint(path, restored, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Epoch)

	want := m.StateDict()
	for name, v := range restored.StateDict() {
		assert.True(t, mat.Equal(want[name], v), name)
	}
}

func TestModel_NamedParameters(t *testing.T) {
	m := twoLayerModel(t, 1)

	var names []string
	for _, p := range m.NamedParameters() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"fc1.1", "fc1.2", "fc2.1", "fc2.2"}, names)

	fc1, _ := m.Layer("fc1")
	assert.Same(t, fc1.Parameters()[0].Node(), m.Parameters()[0].Node())
}

func TestModel_ParametersInfo(t *testing.T) {
	info := twoLayerModel(t, 1).ParametersInfo()

	require.Len(t, info.Parameters, 4)
	assert.Equal(t, nn.ParameterInfo{Name: "fc1.1", Rows: 4, Cols: 3}, info.Parameters[0])
	assert.Equal(t, 4*3+4+1*4+1, info.Total)

	var buf bytes.Buffer
	_, err := info.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t,
		"fc1.1: shape (4, 3)\n"+
			"fc1.2: shape (4, 1)\n"+
			"fc2.1: shape (1, 4)\n"+
			"fc2.2: shape (1, 1)\n"+
			"Total: 21 parameters\n",
		buf.String())
}

func TestModel_CallAndForward(t *testing.T) {
	m := twoLayerModel(t, 1)
	x := input4x3(t)

	h, err := m.Call("fc1", x)
	require.NoError(t, err)
	r, c := h.Shape()
	assert.Equal(t, 4, r)
	assert.Equal(t, 4, c)

	_, err = m.Call("fc9", x)
	assert.ErrorIs(t, err, nn.ErrKeyNotFound)

	_, err = m.Call("fc2", x)
	assert.ErrorIs(t, err, autodiff.ErrShapeMismatch)

	_, err = m.Forward(x)
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
}

func TestModel_StateDictIsACopy(t *testing.T) {
	m := twoLayerModel(t, 1)
	state := m.StateDict()
	require.Len(t, state, 4)

	state["fc1.1"].Set(0, 0, 1000)
	fc1, _ := m.Layer("fc1")
	assert.NotEqual(t, 1000.0, fc1.Parameters()[0].Value().At(0, 0))
}

func TestModel_LoadStateDict(t *testing.T) {
	src := twoLayerModel(t, 1)
	dst := twoLayerModel(t, 2)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	for name, want := range src.StateDict() {
		assert.True(t, mat.Equal(want, dst.StateDict()[name]), name)
	}

	missing := src.StateDict()
	delete(missing, "fc2.2")
	err := dst.LoadStateDict(missing)
	assert.ErrorIs(t, err, nn.ErrKeyNotFound)
	assert.Contains(t, err.Error(), "fc2.2")

	// A failed load leaves the model untouched.
	before := dst.StateDict()
	wrong := src.StateDict()
	wrong["fc1.1"].Set(0, 0, 99)
	wrong["fc2.1"] = mat.NewDense(4, 1, nil)
	assert.ErrorIs(t, dst.LoadStateDict(wrong), autodiff.ErrShapeMismatch)
	assert.True(t, mat.Equal(before["fc1.1"], dst.StateDict()["fc1.1"]))
}

func TestModel_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.deep")
	src := twoLayerModel(t, 1)
	require.NoError(t, src.Save(path))

	dst := twoLayerModel(t, 2)
	require.NoError(t, dst.Load(path))
	for name, want := range src.StateDict() {
		assert.True(t, mat.Equal(want, dst.StateDict()[name]), name)
	}

	other := nn.NewModel()
	require.NoError(t, other.Register("head", nn.MustLinear(3, 4)))
	assert.ErrorIs(t, other.Load(path), nn.ErrKeyNotFound)

	assert.Error(t, dst.Load(filepath.Join(t.TempDir(), "missing.deep")))
}

func TestMLP(t *testing.T) {
	m, err := nn.NewMLP([]int{3, 5, 2, 1}, nn.WithRand(nn.NewRand(4)))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Depth())
	assert.Equal(t, []string{"fc1", "fc2", "fc3"}, m.Names())

	y, err := m.Forward(input4x3(t))
	require.NoError(t, err)
	r, c := y.Shape()
	assert.Equal(t, 4, r)
	assert.Equal(t, 1, c)

	loss, err := nn.MSELoss(y, mat.NewDense(4, 1, []float64{1, 0, 1, 2}))
	require.NoError(t, err)
	// x, then per layer W, Wᵗ, b, affine; relu after the first two; mse target and loss.
	assert.Equal(t, 1+3*4+2+2, autodiff.CountDescendants(loss))

	_, err = nn.NewMLP([]int{3})
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
	_, err = nn.NewMLP([]int{3, 0, 1})
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
}

// fakeOptimizer records one buffer per parameter name.
type fakeOptimizer struct {
	buffers map[string]*mat.Dense
}

func (f *fakeOptimizer) Name() string               { return "Fake" }
func (f *fakeOptimizer) Config() map[string]float64 { return map[string]float64{"lr": 0.5} }
func (f *fakeOptimizer) StateDict() map[string]*mat.Dense {
	return f.buffers
}

func (f *fakeOptimizer) LoadStateDict(state map[string]*mat.Dense) error {
	f.buffers = state
	return nil
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.deep")
	model := twoLayerModel(t, 1)
	opt := &fakeOptimizer{buffers: map[string]*mat.Dense{"fc1.1": mat.NewDense(4, 3, nil)}}
	opt.buffers["fc1.1"].Set(1, 2, 0.75)

	ckpt := &nn.Checkpoint{
		Model:     model,
		Optimizer: opt,
		Epoch:     3,
		Step:      42,
		Loss:      0.125,
		Metadata:  map[string]string{"data": "train.csv"},
		CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, ckpt.Save(path))

	restoredModel := twoLayerModel(t, 9)
	restoredOpt := &fakeOptimizer{}
	got, err := nn.LoadCheckpoint(path, restoredModel, restoredOpt)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Epoch)
	assert.Equal(t, int64(42), got.Step)
	assert.InDelta(t, 0.125, got.Loss, 0)
	assert.Equal(t, "train.csv", got.Metadata["data"])
	assert.True(t, got.CreatedAt.Equal(ckpt.CreatedAt))

	for name, want := range model.StateDict() {
		assert.True(t, mat.Equal(want, restoredModel.StateDict()[name]), name)
	}
	require.Contains(t, restoredOpt.buffers, "fc1.1")
	assert.Equal(t, 0.75, restoredOpt.buffers["fc1.1"].At(1, 2))
}

func TestCheckpoint_RejectsPlainStateDict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.deep")
	model := twoLayerModel(t, 1)
	require.NoError(t, model.Save(path))

	_, err := nn.LoadCheckpoint(path, model, nil)
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)

	assert.ErrorIs(t, (&nn.Checkpoint{}).Save(path), nn.ErrInvalidConfig)
}
