// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/autodiff"
	"github.com/born-ml/deep/nn"
	"github.com/born-ml/deep/optim"
)

// TestModuleInterface verifies that concrete types implement Module interface.
func TestModuleInterface(t *testing.T) {
	rng := nn.NewRand(1)

	tests := []struct {
		name   string
		module nn.Module
	}{
		{
			name:   "Linear",
			module: nn.MustLinear(10, 5, nn.WithRand(rng)),
		},
		{
			name: "Sequential",
			module: nn.NewSequential(
				nn.MustLinear(10, 5, nn.WithRand(rng)),
				nn.NewReLU(),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := autodiff.NewConstant(mat.NewDense(2, 10, nil))
			require.NoError(t, err)

			out, err := tt.module.Forward(input)
			require.NoError(t, err)
			rows, cols := out.Shape()
			assert.Equal(t, 2, rows)
			assert.Equal(t, 5, cols)
			assert.Len(t, tt.module.Parameters(), 2)
		})
	}
}

// TestTrainingReducesLoss fits y = 2a - b with one Linear layer.
func TestTrainingReducesLoss(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{0, 0, 1, 0, 0, 1, 1, 1})
	y := mat.NewDense(4, 1, []float64{0, 2, -1, 1})

	model := nn.NewModel()
	require.NoError(t, model.Register("fc", nn.MustLinear(2, 1, nn.WithRand(nn.NewRand(nn.DefaultSeed)))))
	sgd, err := optim.NewSGD(model.NamedParameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.5})
	require.NoError(t, err)

	input, err := autodiff.NewConstant(x)
	require.NoError(t, err)

	lossAt := func() float64 {
		sgd.ZeroGrad()
		pred, err := model.Call("fc", input)
		require.NoError(t, err)
		loss, err := nn.MSELoss(pred, y)
		require.NoError(t, err)
		require.NoError(t, loss.Backward())
		v, err := loss.Scalar()
		require.NoError(t, err)
		return v
	}

	first := lossAt()
	for i := 0; i < 200; i++ {
		sgd.Step()
		lossAt()
	}
	assert.Less(t, lossAt(), first/100)
}
