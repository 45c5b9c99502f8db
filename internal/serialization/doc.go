// Package serialization provides the .deep format for saving and loading
// named float64 matrices, such as model state dicts and training checkpoints.
//
// The format is a fixed binary preamble, a JSON header and a raw data section:
//
//	Format Structure:
//	  [0x00: Magic "DEEP"]
//	  [0x04: Version (uint32 LE)]
//	  [0x08: Flags (uint32 LE)]
//	  [0x0C: Reserved (uint32)]
//	  [0x10: Header size (uint64 LE)]
//	  [0x18: Data size (uint64 LE)]
//	  [0x20: SHA-256 of the data section (32 bytes)]
//	  [0x40: Header: JSON metadata]
//	  [Matrix data: float64 LE, row-major, 64-byte aligned section]
//
// Matrices are written in name order, so the same state dict always produces
// the same data section.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteFile("model.deep", model.StateDict(), serialization.Header{
//	    ModelType: "MLP",
//	})
//
//	// Load
//	r, err := serialization.Open("model.deep")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	stateDict, err := r.StateDict()
package serialization
