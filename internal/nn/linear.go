package nn

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input node with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias column with shape [out_features, 1]
//   - y is the output node with shape [batch_size, out_features]
//
// With a bias the forward graph is Affine(b, x, Transpose(W)); without one it
// is MatMul(x, Transpose(W)).
//
// Weights are drawn from U(-1/√in, 1/√in) by default. Biases start at zero.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features, 1], nil without bias
}

// LinearOption configures NewLinear.
type LinearOption func(*linearConfig)

type linearConfig struct {
	bias      bool
	trainable bool
	rng       *rand.Rand
	init      func(rng *rand.Rand, in, out int) *mat.Dense
}

// WithoutBias drops the bias parameter.
func WithoutBias() LinearOption {
	return func(c *linearConfig) { c.bias = false }
}

// Frozen creates the layer's parameters as constants.
func Frozen() LinearOption {
	return func(c *linearConfig) { c.trainable = false }
}

// WithRand sets the generator used for weight initialization.
func WithRand(rng *rand.Rand) LinearOption {
	return func(c *linearConfig) { c.rng = rng }
}

// WithInit replaces the weight initializer (FanIn by default).
func WithInit(init func(rng *rand.Rand, in, out int) *mat.Dense) LinearOption {
	return func(c *linearConfig) { c.init = init }
}

// NewLinear creates a new Linear layer.
//
// Returns ErrInvalidConfig if either size is not positive. Without WithRand
// the weights come from NewRand(DefaultSeed).
func NewLinear(inFeatures, outFeatures int, opts ...LinearOption) (*Linear, error) {
	if inFeatures <= 0 || outFeatures <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig,
			"linear sizes must be positive, got in=%d out=%d", inFeatures, outFeatures)
	}

	cfg := linearConfig{bias: true, trainable: true, init: FanIn}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = NewRand(DefaultSeed)
	}

	weight, err := NewParameter("weight", cfg.init(cfg.rng, inFeatures, outFeatures), cfg.trainable)
	if err != nil {
		return nil, errors.WithMessage(err, "linear weight")
	}

	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
	}
	if cfg.bias {
		l.bias, err = NewParameter("bias", Zeros(outFeatures, 1), cfg.trainable)
		if err != nil {
			return nil, errors.WithMessage(err, "linear bias")
		}
	}
	return l, nil
}

// MustLinear is NewLinear that panics on error.
func MustLinear(inFeatures, outFeatures int, opts ...LinearOption) *Linear {
	l, err := NewLinear(inFeatures, outFeatures, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *autodiff.Node) (*autodiff.Node, error) {
	if input == nil {
		return nil, errors.Wrap(autodiff.ErrInvalidGraph, "linear: nil input")
	}
	if input.Cols() != l.inFeatures {
		return nil, errors.Wrapf(autodiff.ErrShapeMismatch,
			"linear: expected input with %d features, got %d", l.inFeatures, input.Cols())
	}

	wT, err := autodiff.Transpose(l.weight.Node())
	if err != nil {
		return nil, err
	}
	if l.bias == nil {
		return autodiff.MatMul(input, wT)
	}
	return autodiff.Affine(l.bias.Node(), input, wT)
}

// Parameters returns the trainable parameters of this layer.
//
// Returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, or nil for a layer built WithoutBias.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
