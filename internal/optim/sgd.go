package optim

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/nn"
)

// SGD implements Stochastic Gradient Descent with momentum.
//
// Update rule:
//
//	first step:  velocity = gradient
//	later steps: velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Velocities are keyed by parameter name. Frozen parameters are skipped.
//
// Example:
//
//	sgd, err := optim.NewSGD(model.NamedParameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[string]*mat.Dense
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate, must be positive
	Momentum float64 // Momentum factor in [0, 1]
}

// DefaultSGDConfig returns LR 1e-5 and momentum 0.9.
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{LR: 1e-5, Momentum: 0.9}
}

// NewSGD creates a new SGD optimizer.
//
// Returns ErrNoParameters for an empty parameter list and ErrInvalidConfig
// when LR is not positive or Momentum is outside [0, 1].
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}
	if config.LR <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "learning rate must be positive, got %g", config.LR)
	}
	if config.Momentum < 0 || config.Momentum > 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "momentum must be within [0, 1], got %g", config.Momentum)
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[string]*mat.Dense),
	}, nil
}

// Step performs a single optimization step.
func (s *SGD) Step() {
	first := len(s.velocities) == 0
	var update mat.Dense
	for _, p := range s.params {
		if !p.Trainable() {
			continue
		}
		v, ok := s.velocities[p.Name()]
		if first || !ok {
			v = mat.DenseCopyOf(p.Grad())
			s.velocities[p.Name()] = v
		} else {
			v.Scale(s.momentum, v)
			v.Add(v, p.Grad())
		}

		update.Reset()
		update.Scale(s.lr, v)
		p.Value().Sub(p.Value(), &update)
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	nn.ZeroGrad(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Name returns "SGD".
func (s *SGD) Name() string {
	return "SGD"
}

// Config returns the hyperparameters.
func (s *SGD) Config() map[string]float64 {
	return map[string]float64{"lr": s.lr, "momentum": s.momentum}
}

// Velocity returns the velocity buffer for the named parameter, if any.
func (s *SGD) Velocity(name string) (*mat.Dense, bool) {
	v, ok := s.velocities[name]
	return v, ok
}

// StateDict returns copies of the velocity buffers.
//
// State keys: "velocity.{param_name}".
func (s *SGD) StateDict() map[string]*mat.Dense {
	state := make(map[string]*mat.Dense, len(s.velocities))
	for name, v := range s.velocities {
		state[bufferKey("velocity", name)] = mat.DenseCopyOf(v)
	}
	return state
}

// LoadStateDict replaces the velocity buffers. Parameters without a stored
// velocity start fresh on the next step.
func (s *SGD) LoadStateDict(state map[string]*mat.Dense) error {
	velocities := make(map[string]*mat.Dense)
	for _, p := range s.params {
		v, err := loadBuffer(state, bufferKey("velocity", p.Name()), p)
		if err != nil {
			return err
		}
		if v != nil {
			velocities[p.Name()] = v
		}
	}
	s.velocities = velocities
	return nil
}
