// Package cpu implements the host execution context.
//
// Storage is an ordinary []float32 slice. Matrix products go through gonum's
// BLAS; element-wise kernels are plain Go loops split across goroutines by
// internal/parallel for large operands.
package cpu

import (
	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/parallel"
)

// Buffer is host-resident element storage.
type Buffer []float32

// Len returns the number of elements.
func (b Buffer) Len() int {
	return len(b)
}

// Context is the host backend. It is stateless and safe to share.
type Context struct {
	par parallel.Config
}

// New creates a host context using every available CPU.
func New() *Context {
	return &Context{par: parallel.DefaultConfig()}
}

// NewWithConfig creates a host context with an explicit loop split.
func NewWithConfig(cfg parallel.Config) *Context {
	return &Context{par: cfg}
}

// Name returns the backend name.
func (c *Context) Name() string {
	return "CPU"
}

// Kind reports la.Host.
func (c *Context) Kind() la.Kind {
	return la.Host
}

// host unwraps a buffer allocated by this backend.
func host(b la.Buffer) []float32 {
	return b.(Buffer)
}

// Allocate returns zeroed storage for n elements.
func (c *Context) Allocate(n int) la.Buffer {
	return make(Buffer, n)
}

// Upload copies src into dst.
func (c *Context) Upload(dst la.Buffer, src []float32) {
	copy(host(dst), src)
}

// Download returns a copy of src.
func (c *Context) Download(src la.Buffer) []float32 {
	out := make([]float32, src.Len())
	copy(out, host(src))
	return out
}

// Get returns element i of src.
func (c *Context) Get(src la.Buffer, i int) float32 {
	return host(src)[i]
}

// Set writes element i of dst.
func (c *Context) Set(dst la.Buffer, i int, v float32) {
	host(dst)[i] = v
}

// Release is a no-op: host storage is reclaimed by the garbage collector.
func (c *Context) Release(la.Buffer) {}

var _ la.Context = (*Context)(nil)
