package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

const denseVersion = "0.1.0"

// WeightsWriter writes tensors in .dense format.
type WeightsWriter struct {
	file   *os.File
	closed bool
}

// NewWeightsWriter creates a .dense file writer.
func NewWeightsWriter(path string) (*WeightsWriter, error) {
	//nolint:gosec // G304: the path is the caller's model directory
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &WeightsWriter{file: file}, nil
}

// Write writes tensors, in order, followed by nothing else.
func (w *WeightsWriter) Write(tensors []Tensor, metadata map[string]string) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	return WriteTo(w.file, tensors, metadata)
}

// Close flushes and closes the file.
func (w *WeightsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	return w.file.Close()
}

// WriteTo writes tensors in .dense format to writer.
func WriteTo(writer io.Writer, tensors []Tensor, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		DenseVersion:  denseVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(tensors)),
		Metadata:      metadata,
	}

	var data bytes.Buffer
	for _, t := range tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if len(t.Data) != t.Rows*t.Cols {
			return fmt.Errorf("tensor %s: %d values for shape [%d %d]", t.Name, len(t.Data), t.Rows, t.Cols)
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   t.Name,
			DType:  DTypeFloat32,
			Shape:  []int{t.Rows, t.Cols},
			Offset: int64(data.Len()),
			Size:   int64(len(t.Data) * bytesPerElement),
		})
		var word [bytesPerElement]byte
		for _, v := range t.Data {
			binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
			data.Write(word[:])
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	var flags uint32
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	sum := checksum(data.Bytes())
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], sum[:])

	if _, err := writer.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := writer.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	padding := alignedOffset(int64(len(headerJSON))) - int64(FixedHeaderSize) - int64(len(headerJSON))
	if padding > 0 {
		if _, err := writer.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := writer.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
