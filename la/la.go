// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package la

import "github.com/born-ml/dense/internal/la"

// Matrix is a dense row-major float32 matrix bound to a Context.
type Matrix = la.Matrix

// Size is a (rows, cols) pair.
type Size = la.Size

// Context is the capability set a compute backend implements.
type Context = la.Context

// Kind identifies the family of a backend.
type Kind = la.Kind

// Backend kinds.
const (
	Host        = la.Host
	Accelerator = la.Accelerator
)

// Device describes an accelerator visible on this machine.
type Device = la.Device

// Arena releases groups of intermediate matrices together.
type Arena = la.Arena

// Errors reported by matrix operations and backends.
var (
	ErrContextMismatch        = la.ErrContextMismatch
	ErrIncompatibleDimensions = la.ErrIncompatibleDimensions
	ErrIndexOutOfRange        = la.ErrIndexOutOfRange
	ErrDeviceUnavailable      = la.ErrDeviceUnavailable
)

// New creates a zero-filled rows x cols matrix.
func New(ctx Context, rows, cols int) (*Matrix, error) {
	return la.New(ctx, rows, cols)
}

// Full creates a rows x cols matrix with every element set to fill.
func Full(ctx Context, rows, cols int, fill float32) (*Matrix, error) {
	return la.Full(ctx, rows, cols, fill)
}

// FullSize creates a matrix of the given size with every element set to fill.
func FullSize(ctx Context, size Size, fill float32) (*Matrix, error) {
	return la.FullSize(ctx, size, fill)
}

// FromSlice creates a rows x cols matrix from row-major values.
//
// Example:
//
//	m, err := la.FromSlice(ctx, 2, 3, []float32{1, 2, 3, 4, 5, 6})
func FromSlice(ctx Context, rows, cols int, values []float32) (*Matrix, error) {
	return la.FromSlice(ctx, rows, cols, values)
}

// FromRows creates a matrix from nested rows, padding short rows with zeros.
func FromRows(ctx Context, rows [][]float32) (*Matrix, error) {
	return la.FromRows(ctx, rows)
}
