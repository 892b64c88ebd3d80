//go:build windows

// Package webgpu implements the accelerator execution context on WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO bindings.
//
// Every operation records one compute pass and submits it to the device
// queue immediately. Reads map a staging buffer and block until the queue
// has drained up to that point, so results are always observable to the
// caller in program order.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/dense/internal/la"
)

// backendName identifies devices enumerated by this package.
const backendName = "WebGPU"

// Context is the accelerator backend bound to one WebGPU device.
type Context struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     la.Device

	// Shader and pipeline cache.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	pool *bufferPool
}

// Devices lists the accelerators visible on this machine.
// WebGPU exposes a single default adapter per power preference, so the
// result holds at most one device. Failures yield an empty list.
func Devices() (devices []la.Device) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			devices = nil
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil
	}
	adapter.Release()

	return []la.Device{{ID: 0, Name: "default adapter", Backend: backendName}}
}

// IsAvailable reports whether at least one accelerator can be opened.
func IsAvailable() bool {
	return len(Devices()) > 0
}

// New opens the given device.
// It fails with la.ErrDeviceUnavailable if the device was not produced by
// Devices or the backend cannot be initialized.
func New(dev la.Device) (ctx *Context, err error) {
	if dev.Backend != backendName || dev.ID != 0 {
		return nil, fmt.Errorf("webgpu: %w: unknown device %s", la.ErrDeviceUnavailable, dev)
	}

	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("webgpu: %w: native library not available: %v", la.ErrDeviceUnavailable, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: request adapter: %v", la.ErrDeviceUnavailable, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: request device: %v", la.ErrDeviceUnavailable, err)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: no queue", la.ErrDeviceUnavailable)
	}

	return &Context{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		info:      dev,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		pool:      newBufferPool(device),
	}, nil
}

// Close releases every WebGPU resource held by the context.
// Matrices bound to the context must not be used afterwards.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.pool.clear()
	}
	for _, p := range c.pipelines {
		p.Release()
	}
	c.pipelines = nil
	for _, s := range c.shaders {
		s.Release()
	}
	c.shaders = nil

	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

// Name returns the backend name including the device.
func (c *Context) Name() string {
	return fmt.Sprintf("%s (%s)", backendName, c.info.Name)
}

// Kind reports la.Accelerator.
func (c *Context) Kind() la.Kind {
	return la.Accelerator
}

// Device returns the device the context was opened on.
func (c *Context) Device() la.Device {
	return c.info
}

// PoolStats returns buffer pool activity since the context was opened.
func (c *Context) PoolStats() PoolStats {
	return c.pool.snapshot()
}

var _ la.Context = (*Context)(nil)
