package nn

import (
	"github.com/pkg/errors"
)

// Common errors.
var (
	// ErrKeyNotFound is returned when a state dict lacks a parameter the model needs.
	ErrKeyNotFound = errors.New("nn: key not found in state dict")

	// ErrInvalidConfig is returned for non-positive layer sizes and similar mistakes.
	ErrInvalidConfig = errors.New("nn: invalid configuration")

	// ErrDuplicateLayer is returned when a layer name is registered twice.
	ErrDuplicateLayer = errors.New("nn: duplicate layer name")
)
