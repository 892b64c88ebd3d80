package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxDataSize      = 1 << 34           // 16GB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

// ValidateTensorName rejects names that could be used as paths.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty tensor name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{Type: "name_too_long", Tensor: name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen)}
	case strings.Contains(name, ".."), strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains a path element or null byte"}
	}
	return nil
}

// validateTensor checks that meta describes a float32 matrix whose byte size
// matches its shape.
func validateTensor(meta TensorMeta) error {
	if err := ValidateTensorName(meta.Name); err != nil {
		return err
	}
	if meta.DType != DTypeFloat32 {
		return &ValidationError{Type: "unsupported_dtype", Tensor: meta.Name, Details: meta.DType}
	}
	if len(meta.Shape) != 2 || meta.Shape[0] < 0 || meta.Shape[1] < 0 {
		return &ValidationError{Type: "invalid_shape", Tensor: meta.Name, Details: fmt.Sprintf("%v is not a matrix shape", meta.Shape)}
	}
	if want := int64(meta.Shape[0]) * int64(meta.Shape[1]) * bytesPerElement; meta.Size != want {
		return &ValidationError{Type: "size_mismatch", Tensor: meta.Name,
			Details: fmt.Sprintf("shape %v needs %d bytes, index says %d", meta.Shape, want, meta.Size)}
	}
	return nil
}

// ValidateHeader checks every index entry and that the tensors tile the
// data section without overlapping or running past its end.
func ValidateHeader(h *Header, dataSize int64) error {
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{Type: "too_many_tensors", Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount)}
	}

	seen := make(map[string]struct{}, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := validateTensor(t); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return &ValidationError{Type: "duplicate_name", Tensor: t.Name, Details: "listed twice"}
		}
		seen[t.Name] = struct{}{}
	}

	sorted := append([]TensorMeta(nil), h.Tensors...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i, t := range sorted {
		if t.Offset < 0 || t.Offset+t.Size > dataSize {
			return &ValidationError{Type: "out_of_bounds", Tensor: t.Name,
				Details: fmt.Sprintf("offset %d + size %d outside data section of %d bytes", t.Offset, t.Size, dataSize)}
		}
		if i+1 < len(sorted) && t.Offset+t.Size > sorted[i+1].Offset {
			next := sorted[i+1]
			return &ValidationError{Type: "offset_overlap", Tensor: t.Name, Tensor2: next.Name,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap", t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size)}
		}
	}
	return nil
}
