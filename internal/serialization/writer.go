package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LibraryVersion is recorded in every header written by this package.
const LibraryVersion = "0.1.0"

// Writer writes matrices in .deep format to a file.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a new .deep file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create file")
	}
	return &Writer{file: file}, nil
}

// Write encodes matrices with header into the file. Header.Matrices,
// FormatVersion and Version are filled in by Write; CreatedAt defaults to now.
func (w *Writer) Write(matrices map[string]*mat.Dense, header Header) error {
	if w.closed {
		return ErrClosed
	}
	return WriteTo(w.file, matrices, header)
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// WriteFile writes matrices and header to path, replacing any existing file.
func WriteFile(path string, matrices map[string]*mat.Dense, header Header) (err error) {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close file")
		}
	}()
	return w.Write(matrices, header)
}

// WriteTo encodes matrices with header to dst.
func WriteTo(dst io.Writer, matrices map[string]*mat.Dense, header Header) error {
	names := make([]string, 0, len(matrices))
	for name := range matrices {
		names = append(names, name)
	}
	sort.Strings(names)

	header.FormatVersion = FormatVersion
	header.Version = LibraryVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var data bytes.Buffer
	header.Matrices = make([]MatrixMeta, 0, len(names))
	for _, name := range names {
		if err := ValidateMatrixName(name); err != nil {
			return err
		}
		m := matrices[name]
		if m == nil {
			return errors.Wrapf(ErrInvalidShape, "matrix %q is nil", name)
		}
		rows, cols := m.Dims()
		meta := MatrixMeta{
			Name:   name,
			DType:  DTypeFloat64,
			Rows:   rows,
			Cols:   cols,
			Offset: int64(data.Len()),
			Size:   int64(rows) * int64(cols) * ElementSize,
		}
		appendMatrix(&data, m)
		header.Matrices = append(header.Matrices, meta)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil && header.CheckpointMeta.OptimizerType != "" {
		flags |= FlagHasOptimizer
	}

	checksum := ComputeChecksum(data.Bytes())

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := dst.Write(fixed); err != nil {
		return errors.Wrap(err, "write fixed header")
	}
	if _, err := dst.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}
	padding := alignedHeaderEnd(int64(len(headerJSON))) - int64(FixedHeaderSize) - int64(len(headerJSON))
	if padding > 0 {
		if _, err := dst.Write(make([]byte, padding)); err != nil {
			return errors.Wrap(err, "write padding")
		}
	}
	if _, err := dst.Write(data.Bytes()); err != nil {
		return errors.Wrap(err, "write matrix data")
	}
	return nil
}

func appendMatrix(buf *bytes.Buffer, m mat.Matrix) {
	rows, cols := m.Dims()
	var b [ElementSize]byte
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(m.At(i, j)))
			buf.Write(b[:])
		}
	}
}
