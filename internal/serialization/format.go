package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "DEEP"
	FormatVersion   = 1
	HeaderAlignment = 64   // Data section starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed binary preamble (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	ElementSize     = 8    // float64
)

// DTypeFloat64 is the only element type the format stores.
const DTypeFloat64 = "float64"

// Flags for the .deep format.
const (
	FlagHasOptimizer uint32 = 1 << 0 // optimizer state included
	FlagHasMetadata  uint32 = 1 << 1 // custom metadata included
)

// Header represents the JSON header in a .deep file.
type Header struct {
	FormatVersion  int               `json:"format_version"`       // Version of the .deep format
	Version        string            `json:"version"`              // Library version that wrote the file
	ModelType      string            `json:"model_type"`           // Free-form model description (e.g., "MLP")
	CreatedAt      time.Time         `json:"created_at"`           // When the file was created
	Matrices       []MatrixMeta      `json:"matrices"`             // Matrix metadata, in data order
	Metadata       map[string]string `json:"metadata"`             // Custom metadata
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"` // Training state (optional)
}

// CheckpointMeta contains training state information for checkpoints.
type CheckpointMeta struct {
	Epoch           int                `json:"epoch"`            // Training epoch number
	Step            int64              `json:"step"`             // Training step number
	Loss            float64            `json:"loss"`             // Loss value at checkpoint
	OptimizerType   string             `json:"optimizer_type"`   // Optimizer type ("SGD")
	OptimizerConfig map[string]float64 `json:"optimizer_config"` // Optimizer hyperparameters
}

// MatrixMeta describes one matrix in the data section.
type MatrixMeta struct {
	Name   string `json:"name"`   // Matrix name (e.g., "fc1.1")
	DType  string `json:"dtype"`  // Always "float64"
	Rows   int    `json:"rows"`   // Number of rows
	Cols   int    `json:"cols"`   // Number of columns
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// Lookup returns the metadata for name.
func (h *Header) Lookup(name string) (MatrixMeta, bool) {
	for _, m := range h.Matrices {
		if m.Name == name {
			return m, true
		}
	}
	return MatrixMeta{}, false
}

func alignedHeaderEnd(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
