//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/dense/internal/la"
)

// Buffer is device-resident element storage.
type Buffer struct {
	buf      *wgpu.Buffer
	n        int
	capacity uint64
}

// Len returns the number of elements.
func (b *Buffer) Len() int {
	return b.n
}

// byteSize returns the number of bytes holding elements.
func (b *Buffer) byteSize() uint64 {
	return uint64(b.n) * 4 //nolint:gosec // G115: element counts are non-negative.
}

// device unwraps a buffer allocated by this backend.
func device(b la.Buffer) *Buffer {
	return b.(*Buffer)
}

// compileShader compiles WGSL code once per name.
func (c *Context) compileShader(name, code string) *wgpu.ShaderModule {
	c.mu.RLock()
	if shader, ok := c.shaders[name]; ok {
		c.mu.RUnlock()
		return shader
	}
	c.mu.RUnlock()

	shader := c.device.CreateShaderModuleWGSL(code)

	c.mu.Lock()
	c.shaders[name] = shader
	c.mu.Unlock()
	return shader
}

// pipeline returns the cached compute pipeline for name.
func (c *Context) pipeline(name, code string) *wgpu.ComputePipeline {
	c.mu.RLock()
	if p, ok := c.pipelines[name]; ok {
		c.mu.RUnlock()
		return p
	}
	c.mu.RUnlock()

	// Auto layout (nil).
	p := c.device.CreateComputePipelineSimple(nil, c.compileShader(name, code), "main")

	c.mu.Lock()
	c.pipelines[name] = p
	c.mu.Unlock()
	return p
}

// createMapped creates a buffer initialized with data.
func (c *Context) createMapped(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mapped := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mapped), size), data)
	buffer.Unmap()
	return buffer
}

// uniform packs u32 and f32 parameters into a 16-byte aligned block.
func uniform(values ...any) []byte {
	size := (len(values)*4 + 15) &^ 15
	params := make([]byte, size)
	for i, v := range values {
		var bits uint32
		switch v := v.(type) {
		case int:
			bits = uint32(v) //nolint:gosec // G115: dimensions are non-negative.
		case float32:
			bits = math.Float32bits(v)
		default:
			panic(fmt.Sprintf("webgpu: unsupported uniform type %T", v))
		}
		binary.LittleEndian.PutUint32(params[i*4:], bits)
	}
	return params
}

// copyTo writes host bytes into dst at the given byte offset.
func (c *Context) copyTo(dst *wgpu.Buffer, offset uint64, data []byte) {
	staging := c.createMapped(data, wgpu.BufferUsageCopySrc)
	defer staging.Release()

	encoder := c.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, dst, offset, uint64(len(data)))
	c.queue.Submit(encoder.Finish(nil))
}

// readRange reads size bytes starting at offset back to host memory.
// Storage buffers cannot be mapped directly, so the range goes through a
// staging buffer.
func (c *Context) readRange(src *wgpu.Buffer, offset, size uint64) []byte {
	staging := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := c.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, offset, staging, 0, size)
	c.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(c.device, wgpu.MapModeRead, 0, size); err != nil {
		panic(fmt.Sprintf("webgpu: read: map staging buffer: %v", err))
	}
	mapped := staging.GetMappedRange(0, size)
	out := make([]byte, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(out, unsafe.Slice((*byte)(mapped), size))
	staging.Unmap()
	return out
}

// kernel describes one compute dispatch.
type kernel struct {
	name    string
	code    string
	buffers []*Buffer // Storage bindings 0..n-1; the last one is written.
	params  []byte    // Uniform binding n.
	groupsX uint32
	groupsY uint32
}

// run records and submits a single compute pass.
func (c *Context) run(k kernel) {
	p := c.pipeline(k.name, k.code)

	bufferParams := c.createMapped(k.params, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	defer bufferParams.Release()

	entries := make([]wgpu.BindGroupEntry, 0, len(k.buffers)+1)
	for i, b := range k.buffers {
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), b.buf, 0, b.byteSize())) //nolint:gosec // G115: small binding index.
	}
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(k.buffers)), bufferParams, 0, uint64(len(k.params)))) //nolint:gosec // G115: small binding index.

	bindGroup := c.device.CreateBindGroupSimple(p.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := c.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(k.groupsX, max(k.groupsY, 1), 1)
	pass.End()

	c.queue.Submit(encoder.Finish(nil))
}

// groups returns ceil(n / size) as a workgroup count.
func groups(n, size int) uint32 {
	return uint32((n + size - 1) / size) //nolint:gosec // G115: workgroup count is non-negative.
}
