// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the accelerator execution context on WebGPU.
//
// Devices enumerates the adapters wgpu-native can see; New binds a context
// to one of them:
//
//	devices := webgpu.Devices()
//	if len(devices) == 0 {
//	    return cpu.New()
//	}
//	gpu, err := webgpu.New(devices[0])
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Close()
//
// The bindings are built on Windows only. Elsewhere Devices is empty and
// New fails with la.ErrDeviceUnavailable.
package webgpu

import (
	internalwebgpu "github.com/born-ml/dense/internal/backend/webgpu"
	"github.com/born-ml/dense/la"
)

// Context is the accelerator execution context.
type Context = internalwebgpu.Context

// Devices lists the accelerators visible on this machine.
func Devices() []la.Device {
	return internalwebgpu.Devices()
}

// IsAvailable reports whether at least one accelerator is usable.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

// New creates a context on dev, which must come from Devices.
func New(dev la.Device) (*Context, error) {
	return internalwebgpu.New(dev)
}
