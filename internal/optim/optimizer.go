// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read each parameter's accumulated gradient and update its value
// in place. State is keyed by parameter name, so named parameters from
// nn.Model keep their buffers across checkpoint save and load.
//
// Example usage:
//
//	sgd, err := optim.NewSGD(model.NamedParameters(), optim.DefaultSGDConfig())
//
//	for step := range steps {
//	    sgd.ZeroGrad()
//	    pred, _ := model.Forward(x)
//	    loss, _ := nn.MSELoss(pred, y)
//	    if err := loss.Backward(); err != nil {
//	        return err
//	    }
//	    sgd.Step()
//	}
package optim

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/nn"
)

// Common errors.
var (
	ErrNoParameters  = errors.New("optim: no trainable parameters")
	ErrInvalidConfig = errors.New("optim: invalid configuration")
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter from its current gradient.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent
	// gradient accumulation from previous iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate, e.g. for scheduling.
	SetLR(lr float64)
}

// checkParams rejects empty and duplicate-named parameter lists.
func checkParams(params []*nn.Parameter) error {
	if len(params) == 0 {
		return ErrNoParameters
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p == nil {
			return errors.Wrap(ErrInvalidConfig, "nil parameter")
		}
		if seen[p.Name()] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate parameter name %q", p.Name())
		}
		seen[p.Name()] = true
	}
	return nil
}

// loadBuffer validates and copies the buffer stored under key for p.
// It returns nil when the key is absent.
func loadBuffer(state map[string]*mat.Dense, key string, p *nn.Parameter) (*mat.Dense, error) {
	m, ok := state[key]
	if !ok || m == nil {
		return nil, nil
	}
	r, c := m.Dims()
	if pr, pc := p.Value().Dims(); r != pr || c != pc {
		return nil, errors.Wrapf(ErrInvalidConfig,
			"%s: buffer is %dx%d, parameter %q is %dx%d", key, r, c, p.Name(), pr, pc)
	}
	return mat.DenseCopyOf(m), nil
}

func bufferKey(kind, name string) string {
	return fmt.Sprintf("%s.%s", kind, name)
}
