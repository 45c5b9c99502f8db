package nn

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
)

// MSELoss computes Mean Squared Error loss against a fixed target.
//
// Loss = mean((predictions - targets)²)
//
// The target is wrapped in a constant leaf, so gradients flow only into the
// predictions. The result is a 1×1 node ready for Backward.
//
// Example:
//
//	predictions, _ := model.Forward(input)
//	loss, _ := nn.MSELoss(predictions, targets)
//	err := loss.Backward()
func MSELoss(predictions *autodiff.Node, targets mat.Matrix) (*autodiff.Node, error) {
	if predictions == nil {
		return nil, errors.Wrap(autodiff.ErrInvalidGraph, "mse loss: nil predictions")
	}
	target, err := autodiff.NewConstant(targets)
	if err != nil {
		return nil, errors.WithMessage(err, "mse loss target")
	}
	return autodiff.MeanSquaredError(predictions, target)
}
