package cpu

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/parallel"
)

// zip applies f element-wise over a and b.
func (c *Context) zip(dst, a, b la.Buffer, f func(x, y float32) float32) {
	out, left, right := host(dst), host(a), host(b)
	parallel.Chunks(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(left[i], right[i])
		}
	}, c.par)
}

// apply applies f element-wise over src.
func (c *Context) apply(dst, src la.Buffer, f func(x float32) float32) {
	out, in := host(dst), host(src)
	parallel.Chunks(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(in[i])
		}
	}, c.par)
}

// Add writes a + b into dst.
func (c *Context) Add(dst, a, b la.Buffer) {
	c.zip(dst, a, b, func(x, y float32) float32 { return x + y })
}

// Sub writes a - b into dst.
func (c *Context) Sub(dst, a, b la.Buffer) {
	c.zip(dst, a, b, func(x, y float32) float32 { return x - y })
}

// Hadamard writes a * b into dst.
func (c *Context) Hadamard(dst, a, b la.Buffer) {
	c.zip(dst, a, b, func(x, y float32) float32 { return x * y })
}

// Scale writes src * s into dst.
func (c *Context) Scale(dst, src la.Buffer, s float32) {
	c.apply(dst, src, func(x float32) float32 { return x * s })
}

// DivScalar writes src / s into dst.
func (c *Context) DivScalar(dst, src la.Buffer, s float32) {
	c.apply(dst, src, func(x float32) float32 { return x / s })
}

// AddScalar writes src + s into dst.
func (c *Context) AddScalar(dst, src la.Buffer, s float32) {
	c.apply(dst, src, func(x float32) float32 { return x + s })
}

// Log writes ln(src) into dst.
func (c *Context) Log(dst, src la.Buffer) {
	c.apply(dst, src, math32.Log)
}
