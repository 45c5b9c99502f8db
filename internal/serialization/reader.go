package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Reader decodes a .deep file. The data section is read into memory on open.
type Reader struct {
	file     io.Closer
	header   Header
	flags    uint32
	checksum Checksum
	data     []byte
	closed   bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Open opens a .deep file with default options (strict validation).
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// OpenWithOptions opens a .deep file with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	r, err := NewReader(file, opts)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, errors.Wrapf(err, "read %s", path)
	}
	r.file = file
	return r, nil
}

// NewReader decodes a .deep stream from src.
func NewReader(src io.Reader, opts ReaderOptions) (*Reader, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(src, fixed); err != nil {
		return nil, errors.Wrap(err, "read fixed header")
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, errors.Wrapf(ErrInvalidMagic, "got %q, expected %q", fixed[0:4], MagicBytes)
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}

	r := &Reader{flags: binary.LittleEndian.Uint32(fixed[8:12])}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	copy(r.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(src, headerJSON); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return nil, errors.Wrap(err, "parse header JSON")
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := alignedHeaderEnd(int64(headerSize)) - int64(FixedHeaderSize) - int64(headerSize)
	if _, err := io.CopyN(io.Discard, src, padding); err != nil {
		return nil, errors.Wrap(err, "read padding")
	}

	var data bytes.Buffer
	//nolint:gosec // G115: an oversized length reads short and is reported below
	computed, err := ComputeChecksumReader(io.TeeReader(io.LimitReader(src, int64(dataSize)), &data))
	if err != nil {
		return nil, errors.Wrap(err, "read matrix data")
	}
	if uint64(data.Len()) != dataSize {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "read matrix data: got %d of %d bytes", data.Len(), dataSize)
	}
	r.data = data.Bytes()

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(computed, r.checksum); err != nil {
			return nil, err
		}
	}
	if err := ValidateHeader(&r.header, int64(len(r.data)), opts.ValidationLevel); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	return r, nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Checksum returns the data section digest stored in the fixed header.
func (r *Reader) Checksum() Checksum {
	return r.checksum
}

// Flags returns the flag bits from the fixed header.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// MatrixNames returns the names of all matrices, in file order.
func (r *Reader) MatrixNames() []string {
	names := make([]string, len(r.header.Matrices))
	for i, meta := range r.header.Matrices {
		names[i] = meta.Name
	}
	return names
}

// Matrix decodes the matrix stored under name.
func (r *Reader) Matrix(name string) (*mat.Dense, error) {
	if r.closed {
		return nil, ErrClosed
	}
	meta, ok := r.header.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	// Checked at every validation level: the shape sizes the allocation below.
	if err := ValidateMatrixShape(meta); err != nil {
		return nil, err
	}
	if dataLen := int64(len(r.data)); meta.Offset < 0 || meta.Offset > dataLen || meta.Size > dataLen-meta.Offset {
		return nil, &ValidationError{Kind: ErrOutOfBounds, Matrix: name, Details: "data section too short"}
	}

	raw := r.data[meta.Offset : meta.Offset+meta.Size]
	values := make([]float64, meta.Rows*meta.Cols)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*ElementSize:]))
	}
	return mat.NewDense(meta.Rows, meta.Cols, values), nil
}

// StateDict decodes every matrix in the file.
func (r *Reader) StateDict() (map[string]*mat.Dense, error) {
	out := make(map[string]*mat.Dense, len(r.header.Matrices))
	for _, meta := range r.header.Matrices {
		m, err := r.Matrix(meta.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "load %q", meta.Name)
		}
		out[meta.Name] = m
	}
	return out, nil
}

// Close releases the reader and the underlying file, if any.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.data = nil
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadFile reads every matrix and the header from path.
func ReadFile(path string) (map[string]*mat.Dense, Header, error) {
	r, err := Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() { _ = r.Close() }()

	matrices, err := r.StateDict()
	if err != nil {
		return nil, Header{}, err
	}
	return matrices, r.Header(), nil
}
