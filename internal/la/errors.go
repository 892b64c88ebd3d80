package la

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by matrix operations and backends.
var (
	ErrContextMismatch        = errors.New("operands bound to different execution contexts")
	ErrIncompatibleDimensions = errors.New("incompatible dimensions")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrDeviceUnavailable      = errors.New("device unavailable")
)

func errDims(op string, a, b Size) error {
	return fmt.Errorf("%w: %s %s %s", ErrIncompatibleDimensions, a, op, b)
}

func errIndex(what string, index, limit int) error {
	return fmt.Errorf("%w: %s %d not in [0, %d)", ErrIndexOutOfRange, what, index, limit)
}

func errRange(what string, start, end, limit int) error {
	return fmt.Errorf("%w: %s range [%d, %d) not within [0, %d]", ErrIndexOutOfRange, what, start, end, limit)
}
