package autodiff

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these; match with errors.Is.
var (
	ErrInvalidGraph         = errors.New("invalid graph")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// shapeError reports operands or gradients of the wrong shape for op.
func shapeError(op OpKind, format string, args ...any) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: %s", op, fmt.Sprintf(format, args...))
}

// dims formats the dimensions of m as "RxC".
func dims(m mat.Matrix) string {
	r, c := m.Dims()
	return fmt.Sprintf("%dx%d", r, c)
}

// isNil reports whether m is a nil interface or wraps a nil pointer such as
// (*mat.Dense)(nil).
func isNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func invalidOperand(op OpKind, i int) error {
	return errors.Wrapf(ErrInvalidGraph, "%s: operand %d is nil", op, i)
}
