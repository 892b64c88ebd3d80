package cpu

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/parallel"
)

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// Sigmoid writes 1 / (1 + exp(-src)) into dst.
func (c *Context) Sigmoid(dst, src la.Buffer) {
	c.apply(dst, src, sigmoid)
}

// SigmoidGradient writes y * (1 - y) into dst for sigmoid outputs y.
func (c *Context) SigmoidGradient(dst, src la.Buffer) {
	c.apply(dst, src, func(y float32) float32 { return y * (1 - y) })
}

// Tanh writes tanh(src) into dst.
func (c *Context) Tanh(dst, src la.Buffer) {
	c.apply(dst, src, math32.Tanh)
}

// TanhGradient writes 1 - y² into dst for tanh outputs y.
func (c *Context) TanhGradient(dst, src la.Buffer) {
	c.apply(dst, src, func(y float32) float32 { return 1 - y*y })
}

// ReLU writes max(0, src) into dst.
func (c *Context) ReLU(dst, src la.Buffer) {
	c.apply(dst, src, func(x float32) float32 { return max(0, x) })
}

// ReLUGradient writes 1 where src > 0 and 0 elsewhere.
func (c *Context) ReLUGradient(dst, src la.Buffer) {
	c.apply(dst, src, func(y float32) float32 {
		if y > 0 {
			return 1
		}
		return 0
	})
}

// Softmax writes the row-wise softmax of src into dst.
// Each row is shifted by its maximum before exponentiation.
func (c *Context) Softmax(dst, src la.Buffer, rows, cols int) {
	out, in := host(dst), host(src)
	parallel.Rows(rows, cols, func(r int) {
		row := in[r*cols : (r+1)*cols]
		res := out[r*cols : (r+1)*cols]

		maxVal := row[0]
		for _, v := range row[1:] {
			maxVal = max(maxVal, v)
		}

		var sum float32
		for j, v := range row {
			e := math32.Exp(v - maxVal)
			res[j] = e
			sum += e
		}
		for j := range res {
			res[j] /= sum
		}
	}, c.par)
}
