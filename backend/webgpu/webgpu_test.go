// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package webgpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/dense/backend/webgpu"
	"github.com/born-ml/dense/la"
)

func TestNew_UnknownDevice(t *testing.T) {
	_, err := webgpu.New(la.Device{ID: 1 << 20, Name: "missing", Backend: "WebGPU"})
	assert.ErrorIs(t, err, la.ErrDeviceUnavailable)
}

func TestIsAvailable_MatchesDevices(t *testing.T) {
	if !webgpu.IsAvailable() {
		assert.Empty(t, webgpu.Devices())
	}
}
