package serialization

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrOffsetOverlap      = errors.New("matrix offsets overlap")
	ErrOutOfBounds        = errors.New("matrix extends beyond data section")
	ErrTooManyMatrices    = errors.New("too many matrices in file")
	ErrInvalidName        = errors.New("invalid matrix name")
	ErrInvalidShape       = errors.New("invalid matrix shape")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrNotFound           = errors.New("matrix not found")
	ErrClosed             = errors.New("file is closed")
)

// ValidationError provides detailed information about validation failures.
// It unwraps to one of the sentinel errors above.
type ValidationError struct {
	Kind    error  // Sentinel describing the failure
	Matrix  string // Primary matrix name involved
	Matrix2 string // Secondary matrix name (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Matrix2 != "" {
		return fmt.Sprintf("%v: %q and %q: %s", e.Kind, e.Matrix, e.Matrix2, e.Details)
	}
	if e.Matrix != "" {
		return fmt.Sprintf("%v: %q: %s", e.Kind, e.Matrix, e.Details)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Details)
}

// Unwrap returns the sentinel so errors.Is matches it.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}
