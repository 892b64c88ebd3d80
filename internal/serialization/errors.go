package serialization

import (
	"errors"
	"fmt"
)

// Errors returned by Store, Load and the weights codec.
var (
	ErrNotModelDirectory  = errors.New("not a model directory")
	ErrChecksumMismatch   = errors.New("weights checksum mismatch")
	ErrUnknownActivation  = errors.New("unknown activation")
	ErrInvalidMagic       = errors.New("not a dense weights file")
	ErrUnsupportedVersion = errors.New("unsupported model format version")
	ErrHeaderTooLarge     = errors.New("weights header too large")
	ErrMissingTensor      = errors.New("tensor missing from weights file")
)

// ValidationError describes a malformed entry in the weights index.
type ValidationError struct {
	Type    string // "duplicate_name", "out_of_bounds", "offset_overlap", ...
	Tensor  string
	Tensor2 string // the other tensor of an overlap
	Details string
}

func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
