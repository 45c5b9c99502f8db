package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// Checksum is the SHA-256 digest stored at ChecksumOffset. It covers the data
// section only; the JSON header is not hashed.
type Checksum [ChecksumSize]byte

// String returns the digest in hex.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// ComputeChecksum hashes a complete data section.
func ComputeChecksum(data []byte) Checksum {
	return sha256.Sum256(data)
}

// ComputeChecksumReader hashes a data section as it is streamed from r.
func ComputeChecksumReader(r io.Reader) (Checksum, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Checksum{}, errors.Wrap(err, "hash data section")
	}
	return Checksum(h.Sum(nil)), nil
}

// ValidateChecksum reports ErrChecksumMismatch, with both digests, when the
// data section no longer hashes to the stored value.
func ValidateChecksum(computed, stored Checksum) error {
	if computed == stored {
		return nil
	}
	return errors.Wrapf(ErrChecksumMismatch, "stored %.16s..., computed %.16s...", stored, computed)
}
