package optim

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/nn"
	"github.com/born-ml/deep/internal/parallel"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)   // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int                   // Timestep for bias correction
	m      map[string]*mat.Dense // First moment estimates
	v      map[string]*mat.Dense // Second moment estimates
	par    parallel.Config       // Row fan-out for large parameters
}

// AdamConfig holds configuration for Adam optimizer. Zero fields take the
// defaults LR 0.001, Betas {0.9, 0.999}, Eps 1e-8.
type AdamConfig struct {
	LR    float64
	Betas [2]float64
	Eps   float64
}

// NewAdam creates a new Adam optimizer.
func NewAdam(params []*nn.Parameter, config AdamConfig) (*Adam, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	if config.LR < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "learning rate must be positive, got %g", config.LR)
	}
	for _, b := range config.Betas {
		if b < 0 || b >= 1 {
			return nil, errors.Wrapf(ErrInvalidConfig, "betas must be within [0, 1), got %v", config.Betas)
		}
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[string]*mat.Dense),
		v:      make(map[string]*mat.Dense),
		par:    parallel.DefaultConfig(),
	}, nil
}

// Step performs a single optimization step. Frozen parameters are skipped.
func (a *Adam) Step() {
	a.t++
	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, p := range a.params {
		if !p.Trainable() {
			continue
		}
		rows, cols := p.Value().Dims()
		m, ok := a.m[p.Name()]
		if !ok {
			m = mat.NewDense(rows, cols, nil)
			a.m[p.Name()] = m
		}
		v, ok := a.v[p.Name()]
		if !ok {
			v = mat.NewDense(rows, cols, nil)
			a.v[p.Name()] = v
		}

		grad, value := p.Grad(), p.Value()
		parallel.For(rows, a.par, func(i int) {
			g, mRow, vRow, xRow := grad.RawRowView(i), m.RawRowView(i), v.RawRowView(i), value.RawRowView(i)
			for j := 0; j < cols; j++ {
				mRow[j] = a.beta1*mRow[j] + (1-a.beta1)*g[j]
				vRow[j] = a.beta2*vRow[j] + (1-a.beta2)*g[j]*g[j]

				mHat := mRow[j] / biasCorrection1
				vHat := vRow[j] / biasCorrection2
				xRow[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
			}
		})
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	nn.ZeroGrad(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}

// Name returns "Adam".
func (a *Adam) Name() string {
	return "Adam"
}

// Config returns the hyperparameters.
func (a *Adam) Config() map[string]float64 {
	return map[string]float64{"lr": a.lr, "beta1": a.beta1, "beta2": a.beta2, "eps": a.eps}
}

// StateDict returns copies of the moment buffers and the timestep.
//
// State keys: "m.{param_name}", "v.{param_name}" and "t" (1×1).
func (a *Adam) StateDict() map[string]*mat.Dense {
	state := make(map[string]*mat.Dense, 2*len(a.m)+1)
	for name, m := range a.m {
		state[bufferKey("m", name)] = mat.DenseCopyOf(m)
	}
	for name, v := range a.v {
		state[bufferKey("v", name)] = mat.DenseCopyOf(v)
	}
	state["t"] = mat.NewDense(1, 1, []float64{float64(a.t)})
	return state
}

// LoadStateDict replaces the moment buffers and timestep.
func (a *Adam) LoadStateDict(state map[string]*mat.Dense) error {
	moments := map[string]map[string]*mat.Dense{"m": {}, "v": {}}
	for _, p := range a.params {
		for kind, dst := range moments {
			buf, err := loadBuffer(state, bufferKey(kind, p.Name()), p)
			if err != nil {
				return err
			}
			if buf != nil {
				dst[p.Name()] = buf
			}
		}
	}

	t := 0
	if ts, ok := state["t"]; ok && ts != nil {
		if r, c := ts.Dims(); r != 1 || c != 1 {
			return errors.Wrapf(ErrInvalidConfig, "t: want 1x1, got %dx%d", r, c)
		}
		t = int(ts.At(0, 0))
	}

	a.m, a.v, a.t = moments["m"], moments["v"], t
	return nil
}
