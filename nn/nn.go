// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks on top of
// the autodiff engine.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, ReLU, Sequential
//   - Models: Model (named layer registry), MLP
//   - Loss functions: MSELoss
//   - Persistence: Model.Save/Load, Checkpoint
//   - Initialization: FanIn, Xavier, Zeros
//
// # Basic Usage
//
//	model, err := nn.NewMLP([]int{11, 64, 64, 32, 1})
//	if err != nil {
//	    return err
//	}
//	x, _ := autodiff.NewConstant(features)
//	pred, _ := model.Forward(x)
//	loss, _ := nn.MSELoss(pred, labels)
//	err = loss.Backward()
package nn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/autodiff"
	"github.com/born-ml/deep/internal/nn"
)

// Module is the interface every layer implements.
type Module = nn.Module

// Parameter is a named leaf of a module.
type Parameter = nn.Parameter

// Linear is a fully connected layer.
type Linear = nn.Linear

// LinearOption configures NewLinear.
type LinearOption = nn.LinearOption

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// Sequential chains modules.
type Sequential = nn.Sequential

// Model is a registry of named layers.
type Model = nn.Model

// MLP is a Model of Linear layers with ReLU between them.
type MLP = nn.MLP

// ParametersInfo summarizes a model's parameter shapes.
type ParametersInfo = nn.ParametersInfo

// ParameterInfo describes one parameter.
type ParameterInfo = nn.ParameterInfo

// Checkpoint is a training state snapshot.
type Checkpoint = nn.Checkpoint

// OptimizerState is implemented by optimizers that can be checkpointed.
type OptimizerState = nn.OptimizerState

// Common errors.
var (
	ErrKeyNotFound    = nn.ErrKeyNotFound
	ErrInvalidConfig  = nn.ErrInvalidConfig
	ErrDuplicateLayer = nn.ErrDuplicateLayer
)

// DefaultSeed seeds NewRand when callers do not pick their own seed.
const DefaultSeed = nn.DefaultSeed

// NewParameter wraps value in a new named leaf.
func NewParameter(name string, value mat.Matrix, trainable bool) (*Parameter, error) {
	return nn.NewParameter(name, value, trainable)
}

// NewLinear creates a fully connected layer.
//
// Example:
//
//	layer, err := nn.NewLinear(784, 128, nn.WithRand(nn.NewRand(1)))
func NewLinear(inFeatures, outFeatures int, opts ...LinearOption) (*Linear, error) {
	return nn.NewLinear(inFeatures, outFeatures, opts...)
}

// MustLinear is NewLinear that panics on error.
func MustLinear(inFeatures, outFeatures int, opts ...LinearOption) *Linear {
	return nn.MustLinear(inFeatures, outFeatures, opts...)
}

// WithoutBias drops the bias term.
func WithoutBias() LinearOption {
	return nn.WithoutBias()
}

// Frozen makes the layer's parameters constants.
func Frozen() LinearOption {
	return nn.Frozen()
}

// WithRand sets the initialization source.
func WithRand(rng *rand.Rand) LinearOption {
	return nn.WithRand(rng)
}

// WithInit replaces the weight initializer.
func WithInit(init func(rng *rand.Rand, in, out int) *mat.Dense) LinearOption {
	return nn.WithInit(init)
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// NewSequential chains modules in order.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// NewModel creates an empty model.
func NewModel() *Model {
	return nn.NewModel()
}

// NewMLP creates an MLP for the given layer sizes.
func NewMLP(sizes []int, opts ...LinearOption) (*MLP, error) {
	return nn.NewMLP(sizes, opts...)
}

// MSELoss returns the mean squared error between predictions and targets.
func MSELoss(predictions *autodiff.Node, targets mat.Matrix) (*autodiff.Node, error) {
	return nn.MSELoss(predictions, targets)
}

// LoadCheckpoint restores a checkpoint into model and optimizer.
func LoadCheckpoint(path string, model *Model, optimizer OptimizerState) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, model, optimizer)
}

// ZeroGrad clears the gradients of every parameter in params.
func ZeroGrad(params []*Parameter) {
	nn.ZeroGrad(params)
}

// NewRand returns a deterministic generator for weight initialization.
func NewRand(seed uint64) *rand.Rand {
	return nn.NewRand(seed)
}

// FanIn returns a [out, in] matrix drawn from U(-1/√in, 1/√in).
func FanIn(rng *rand.Rand, in, out int) *mat.Dense {
	return nn.FanIn(rng, in, out)
}

// Xavier returns a [out, in] matrix with Xavier/Glorot uniform values.
func Xavier(rng *rand.Rand, in, out int) *mat.Dense {
	return nn.Xavier(rng, in, out)
}

// Zeros returns a rows×cols zero matrix.
func Zeros(rows, cols int) *mat.Dense {
	return nn.Zeros(rows, cols)
}
