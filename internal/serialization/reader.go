package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// ReadFile reads a .dense file.
func ReadFile(path string) (Header, []Tensor, error) {
	//nolint:gosec // G304: the path is the caller's model directory
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ReadFrom(file)
}

// ReadFrom reads tensors in .dense format from reader, verifying the
// checksum and the tensor index.
func ReadFrom(reader io.Reader) (Header, []Tensor, error) {
	var header Header

	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(reader, fixed); err != nil {
		return header, nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return header, nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return header, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return header, nil, ErrHeaderTooLarge
	}
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if dataSize > MaxDataSize {
		return header, nil, &ValidationError{Type: "data_too_large", Details: fmt.Sprintf("%d bytes", dataSize)}
	}
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, headerJSON); err != nil {
		return header, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return header, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := alignedOffset(int64(headerSize)) - int64(FixedHeaderSize) - int64(headerSize)
	if _, err := io.CopyN(io.Discard, reader, padding); err != nil {
		return header, nil, fmt.Errorf("failed to skip padding: %w", err)
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(reader, data); err != nil {
		return header, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := verifyChecksum(data, stored); err != nil {
		return header, nil, err
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return header, nil, fmt.Errorf("validation failed: %w", err)
	}

	tensors := make([]Tensor, len(header.Tensors))
	for i, meta := range header.Tensors {
		raw := data[meta.Offset : meta.Offset+meta.Size]
		values := make([]float32, meta.Size/bytesPerElement)
		for j := range values {
			values[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[j*bytesPerElement:]))
		}
		tensors[i] = Tensor{Name: meta.Name, Rows: meta.Shape[0], Cols: meta.Shape[1], Data: values}
	}
	return header, tensors, nil
}
