//go:build !windows

// Package webgpu implements the accelerator execution context on WebGPU.
//
// The WebGPU bindings are only built on Windows. On other platforms no
// device is ever enumerated and New always fails with
// la.ErrDeviceUnavailable.
package webgpu

import (
	"fmt"

	"github.com/born-ml/dense/internal/la"
)

// Context is the accelerator backend. It cannot be constructed on this
// platform.
type Context struct {
	la.Context
}

// Devices returns no devices on this platform.
func Devices() []la.Device {
	return nil
}

// IsAvailable reports false on this platform.
func IsAvailable() bool {
	return false
}

// New always fails with la.ErrDeviceUnavailable on this platform.
func New(dev la.Device) (*Context, error) {
	return nil, fmt.Errorf("webgpu: %w: %s: not supported on this platform", la.ErrDeviceUnavailable, dev)
}

// Close is a no-op.
func (c *Context) Close() {}
