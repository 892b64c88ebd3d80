//go:build !windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/dense/internal/la"
)

func TestUnsupportedPlatform(t *testing.T) {
	assert.Empty(t, Devices())
	assert.False(t, IsAvailable())

	ctx, err := New(la.Device{Backend: "WebGPU"})
	assert.Nil(t, ctx)
	assert.ErrorIs(t, err, la.ErrDeviceUnavailable)
}
