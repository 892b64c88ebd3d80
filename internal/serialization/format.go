package serialization

import (
	"fmt"
	"time"
)

// Format constants.
const (
	MagicBytes      = "DENS"
	FormatVersion   = 1
	HeaderAlignment = 64 // Tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	DTypeFloat32    = "float32"
	bytesPerElement = 4
)

// Flags for the .dense format.
const (
	FlagHasMetadata uint32 = 1 << 0 // custom metadata included
)

// Header is the JSON index following the fixed header.
type Header struct {
	FormatVersion int               `json:"format_version"`
	DenseVersion  string            `json:"dense_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one matrix in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "layer.0.weights"
	DType  string `json:"dtype"`  // always "float32"
	Shape  []int  `json:"shape"`  // [rows, cols]
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// Tensor is a named host copy of a matrix.
type Tensor struct {
	Name string
	Rows int
	Cols int
	Data []float32 // row-major
}

// weightsName is the tensor name of layer i's weights.
func weightsName(i int) string {
	return fmt.Sprintf("layer.%d.weights", i)
}

// alignedOffset returns the start of the data section for a JSON header of
// headerSize bytes.
func alignedOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
