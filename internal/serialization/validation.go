package serialization

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB - maximum JSON header size
	MaxMatrixCount   = 100_000          // Maximum number of matrices in a file
	MaxMatrixNameLen = 1024             // Maximum matrix name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and shapes but not offsets.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateMatrixName rejects empty names, control bytes and path separators.
// Names such as "fc1.1" or "optimizer.fc1.1" are valid.
func ValidateMatrixName(name string) error {
	if name == "" {
		return &ValidationError{Kind: ErrInvalidName, Details: "empty name"}
	}
	if len(name) > MaxMatrixNameLen {
		return &ValidationError{
			Kind:    ErrInvalidName,
			Matrix:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxMatrixNameLen),
		}
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{Kind: ErrInvalidName, Matrix: name, Details: "contains a path separator or null byte"}
	}
	return nil
}

// ValidateMatrixShape checks that the recorded shape and byte size agree.
func ValidateMatrixShape(m MatrixMeta) error {
	if m.DType != DTypeFloat64 {
		return &ValidationError{Kind: ErrInvalidShape, Matrix: m.Name, Details: "unsupported dtype " + m.DType}
	}
	if m.Rows <= 0 || m.Cols <= 0 {
		return &ValidationError{
			Kind:    ErrInvalidShape,
			Matrix:  m.Name,
			Details: fmt.Sprintf("%dx%d is not a matrix", m.Rows, m.Cols),
		}
	}
	if int64(m.Rows) > math.MaxInt64/ElementSize/int64(m.Cols) {
		return &ValidationError{
			Kind:    ErrInvalidShape,
			Matrix:  m.Name,
			Details: fmt.Sprintf("%dx%d overflows the data section", m.Rows, m.Cols),
		}
	}
	if want := int64(m.Rows) * int64(m.Cols) * ElementSize; m.Size != want {
		return &ValidationError{
			Kind:    ErrInvalidShape,
			Matrix:  m.Name,
			Details: fmt.Sprintf("size %d, want %d for %dx%d", m.Size, want, m.Rows, m.Cols),
		}
	}
	return nil
}

// ValidateOffsets checks for overlapping matrices and out-of-bounds access.
func ValidateOffsets(matrices []MatrixMeta, dataSize int64) error {
	sorted := make([]MatrixMeta, len(matrices))
	copy(sorted, matrices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, m := range sorted {
		if m.Offset < 0 || m.Size < 0 {
			return &ValidationError{
				Kind:    ErrOutOfBounds,
				Matrix:  m.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", m.Offset, m.Size),
			}
		}
		if m.Offset+m.Size > dataSize {
			return &ValidationError{
				Kind:    ErrOutOfBounds,
				Matrix:  m.Name,
				Details: fmt.Sprintf("offset %d + size %d > data size %d", m.Offset, m.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if m.Offset+m.Size > next.Offset {
				return &ValidationError{
					Kind:    ErrOffsetOverlap,
					Matrix:  m.Name,
					Matrix2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						m.Offset, m.Offset+m.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}

// ValidateHeader performs header validation at the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Matrices) > MaxMatrixCount {
		return &ValidationError{
			Kind:    ErrTooManyMatrices,
			Details: fmt.Sprintf("got %d, max %d", len(h.Matrices), MaxMatrixCount),
		}
	}

	seen := make(map[string]bool, len(h.Matrices))
	for _, m := range h.Matrices {
		if err := ValidateMatrixName(m.Name); err != nil {
			return err
		}
		if seen[m.Name] {
			return &ValidationError{Kind: ErrInvalidName, Matrix: m.Name, Details: "duplicate name"}
		}
		seen[m.Name] = true
		if err := ValidateMatrixShape(m); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		return ValidateOffsets(h.Matrices, dataSize)
	}
	return nil
}
