//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass groups pooled buffers by capacity.
type sizeClass int

const (
	smallClass  sizeClass = iota // < 4KB: vectors, biases, small batches.
	mediumClass                  // 4KB-1MB: weights and typical minibatches.
	largeClass                   // >= 1MB.
	numClasses
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
	maxPerClass     = 128

	// storageUsage is shared by every matrix buffer so any pooled buffer
	// can serve any allocation.
	storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst
)

// PoolStats reports buffer pool activity.
type PoolStats struct {
	Created  uint64 // Buffers created on the device.
	Returned uint64 // Buffers handed back by Release.
	Hits     uint64 // Acquire calls served from the pool.
	Misses   uint64 // Acquire calls that created a buffer.
	Pooled   int    // Buffers currently idle in the pool.
}

// bufferPool recycles storage buffers between matrix operations.
//
// A trainer releases every intermediate matrix after each minibatch step,
// so the next step finds same-sized buffers waiting here instead of
// allocating on the device. Release may be called from finalizer
// goroutines; all methods are safe for concurrent use.
type bufferPool struct {
	device *wgpu.Device

	mu    sync.Mutex
	idle  [numClasses][]*wgpu.Buffer
	caps  [numClasses][]uint64
	stats PoolStats
}

func newBufferPool(device *wgpu.Device) *bufferPool {
	return &bufferPool{device: device}
}

func classOf(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return smallClass
	case size < mediumThreshold:
		return mediumClass
	default:
		return largeClass
	}
}

// acquire returns a buffer holding at least size bytes and its capacity.
// The contents are unspecified.
func (p *bufferPool) acquire(size uint64) (*wgpu.Buffer, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classOf(size)
	best := -1
	for i, c := range p.caps[class] {
		if c >= size && (best < 0 || c < p.caps[class][best]) {
			best = i
			if c == size {
				break
			}
		}
	}
	if best >= 0 {
		buf, capacity := p.idle[class][best], p.caps[class][best]
		p.remove(class, best)
		p.stats.Hits++
		return buf, capacity
	}

	p.stats.Misses++
	p.stats.Created++
	buf := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: storageUsage,
		Size:  size,
	})
	return buf, size
}

// release parks buf for reuse, or destroys it when its class is full.
func (p *bufferPool) release(buf *wgpu.Buffer, capacity uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Returned++
	class := classOf(capacity)
	if len(p.idle[class]) < maxPerClass {
		p.idle[class] = append(p.idle[class], buf)
		p.caps[class] = append(p.caps[class], capacity)
		return
	}
	buf.Release()
}

func (p *bufferPool) remove(class sizeClass, i int) {
	last := len(p.idle[class]) - 1
	p.idle[class][i], p.caps[class][i] = p.idle[class][last], p.caps[class][last]
	p.idle[class][last] = nil
	p.idle[class] = p.idle[class][:last]
	p.caps[class] = p.caps[class][:last]
}

// clear destroys every idle buffer.
func (p *bufferPool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for class := range p.idle {
		for _, buf := range p.idle[class] {
			buf.Release()
		}
		p.idle[class] = nil
		p.caps[class] = nil
	}
}

func (p *bufferPool) snapshot() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	for class := range p.idle {
		s.Pooled += len(p.idle[class])
	}
	return s
}
