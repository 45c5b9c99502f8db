// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers that update nn parameters from their
// accumulated gradients.
package optim

import (
	"github.com/born-ml/deep/internal/optim"
	"github.com/born-ml/deep/nn"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Common errors.
var (
	ErrNoParameters  = optim.ErrNoParameters
	ErrInvalidConfig = optim.ErrInvalidConfig
)

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// DefaultSGDConfig returns LR 1e-5 and momentum 0.9.
func DefaultSGDConfig() SGDConfig {
	return optim.DefaultSGDConfig()
}

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	model, _ := nn.NewMLP([]int{11, 64, 1})
//	optimizer, err := optim.NewSGD(
//	    model.NamedParameters(),
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	)
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(params []*nn.Parameter, config AdamConfig) (*Adam, error) {
	return optim.NewAdam(params, config)
}
