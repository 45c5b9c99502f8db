package nn

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/serialization"
)

const optimizerPrefix = "optimizer."

// OptimizerState represents an optimizer that can save/load its state.
//
// This interface is used by checkpoints to serialize optimizer state
// without creating import cycles. Optimizers from the optim package
// implement this interface.
type OptimizerState interface {
	// Name identifies the optimizer type (e.g., "SGD").
	Name() string

	// Config returns the optimizer hyperparameters.
	Config() map[string]float64

	// StateDict returns the optimizer buffers for serialization.
	StateDict() map[string]*mat.Dense

	// LoadStateDict restores optimizer buffers.
	LoadStateDict(state map[string]*mat.Dense) error
}

// Checkpoint represents a complete training state snapshot: model
// parameters, optimizer buffers and progress counters.
//
// Example:
//
//	ckpt := &nn.Checkpoint{Model: model.Model, Optimizer: sgd, Epoch: 10, Loss: 0.12}
//	err := ckpt.Save("epoch10.deep")
//
// To resume training:
//
//	ckpt, err := nn.LoadCheckpoint("epoch10.deep", model.Model, sgd)
//	startEpoch := ckpt.Epoch + 1
type Checkpoint struct {
	Model     *Model            // The model whose parameters are saved
	Optimizer OptimizerState    // Optional optimizer state
	Epoch     int               // Training epoch number
	Step      int64             // Training step number
	Loss      float64           // Loss value at this checkpoint
	Metadata  map[string]string // Additional training metadata
	CreatedAt time.Time         // When the checkpoint was created
}

// Save writes the checkpoint to path in .deep format. Optimizer buffers are
// stored under the "optimizer." prefix.
func (c *Checkpoint) Save(path string) error {
	if c.Model == nil {
		return errors.Wrap(ErrInvalidConfig, "checkpoint without model")
	}

	combined := c.Model.StateDict()
	meta := &serialization.CheckpointMeta{
		Epoch: c.Epoch,
		Step:  c.Step,
		Loss:  c.Loss,
	}
	if c.Optimizer != nil {
		for name, m := range c.Optimizer.StateDict() {
			combined[optimizerPrefix+name] = m
		}
		meta.OptimizerType = c.Optimizer.Name()
		meta.OptimizerConfig = c.Optimizer.Config()
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := serialization.WriteFile(path, combined, serialization.Header{
		ModelType:      "Checkpoint",
		CreatedAt:      createdAt,
		Metadata:       c.Metadata,
		CheckpointMeta: meta,
	})
	return errors.WithMessage(err, "save checkpoint")
}

// LoadCheckpoint reads a checkpoint written by Save into model and, when not
// nil, optimizer. Both must be built with the same shapes as when saved.
func LoadCheckpoint(path string, model *Model, optimizer OptimizerState) (*Checkpoint, error) {
	state, header, err := serialization.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "load checkpoint")
	}
	if header.CheckpointMeta == nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s is not a checkpoint", path)
	}

	modelState := make(map[string]*mat.Dense)
	optimizerState := make(map[string]*mat.Dense)
	for name, m := range state {
		if rest, ok := strings.CutPrefix(name, optimizerPrefix); ok {
			optimizerState[rest] = m
		} else {
			modelState[name] = m
		}
	}

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, errors.WithMessage(err, "load model state")
	}
	if optimizer != nil {
		if err := optimizer.LoadStateDict(optimizerState); err != nil {
			return nil, errors.WithMessage(err, "load optimizer state")
		}
	}

	return &Checkpoint{
		Model:     model,
		Optimizer: optimizer,
		Epoch:     header.CheckpointMeta.Epoch,
		Step:      header.CheckpointMeta.Step,
		Loss:      header.CheckpointMeta.Loss,
		Metadata:  header.Metadata,
		CreatedAt: header.CreatedAt,
	}, nil
}
