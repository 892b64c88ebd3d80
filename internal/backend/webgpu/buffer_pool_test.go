//go:build windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOf(t *testing.T) {
	assert.Equal(t, smallClass, classOf(4))
	assert.Equal(t, mediumClass, classOf(smallThreshold))
	assert.Equal(t, largeClass, classOf(mediumThreshold))
}

func TestBufferPool_AcquireRelease(t *testing.T) {
	ctx := openDefault(t)
	pool := newBufferPool(ctx.device)
	defer pool.clear()

	buf, capacity := pool.acquire(1024)
	assert.Equal(t, uint64(1024), capacity)
	pool.release(buf, capacity)

	// A smaller request in the same class reuses the idle buffer.
	again, capacity := pool.acquire(512)
	assert.Same(t, buf, again)
	assert.Equal(t, uint64(1024), capacity)

	stats := pool.snapshot()
	assert.Equal(t, uint64(1), stats.Created)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Zero(t, stats.Pooled)
	pool.release(again, capacity)
}

func TestBufferPool_BestFit(t *testing.T) {
	ctx := openDefault(t)
	pool := newBufferPool(ctx.device)
	defer pool.clear()

	big, bigCap := pool.acquire(2048)
	small, smallCap := pool.acquire(256)
	pool.release(big, bigCap)
	pool.release(small, smallCap)

	got, capacity := pool.acquire(200)
	assert.Same(t, small, got)
	assert.Equal(t, uint64(256), capacity)
	assert.Equal(t, 1, pool.snapshot().Pooled)
	pool.release(got, capacity)
}
