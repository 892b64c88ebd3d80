//go:build windows

package webgpu

import (
	"encoding/binary"
	"math"

	"github.com/born-ml/dense/internal/la"
)

// Allocate acquires pooled storage for n elements. Contents are unspecified.
func (c *Context) Allocate(n int) la.Buffer {
	size := max(uint64(n)*4, 4) //nolint:gosec // G115: element counts are non-negative.
	buf, capacity := c.pool.acquire(size)
	return &Buffer{buf: buf, n: n, capacity: capacity}
}

// Release returns storage to the pool.
func (c *Context) Release(b la.Buffer) {
	d := device(b)
	if d.buf == nil {
		return
	}
	c.pool.release(d.buf, d.capacity)
	d.buf = nil
}

// Upload copies host values into dst.
func (c *Context) Upload(dst la.Buffer, src []float32) {
	if len(src) == 0 {
		return
	}
	data := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	c.copyTo(device(dst).buf, 0, data)
}

// Download reads every element of src back to the host.
func (c *Context) Download(src la.Buffer) []float32 {
	d := device(src)
	raw := c.readRange(d.buf, 0, d.byteSize())
	out := make([]float32, d.n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

// Get reads element i of src.
func (c *Context) Get(src la.Buffer, i int) float32 {
	raw := c.readRange(device(src).buf, uint64(i)*4, 4) //nolint:gosec // G115: validated index.
	return math.Float32frombits(binary.LittleEndian.Uint32(raw))
}

// Set writes element i of dst.
func (c *Context) Set(dst la.Buffer, i int, v float32) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, math.Float32bits(v))
	c.copyTo(device(dst).buf, uint64(i)*4, data) //nolint:gosec // G115: validated index.
}

// elementwise dispatches a 1D kernel over every element of dst.
func (c *Context) elementwise(name, code string, dst la.Buffer, params []byte, srcs ...la.Buffer) {
	buffers := make([]*Buffer, 0, len(srcs)+1)
	for _, s := range srcs {
		buffers = append(buffers, device(s))
	}
	buffers = append(buffers, device(dst))
	c.run(kernel{
		name:    name,
		code:    code,
		buffers: buffers,
		params:  params,
		groupsX: groups(dst.Len(), workgroupSize),
	})
}

// Add writes a + b into dst.
func (c *Context) Add(dst, a, b la.Buffer) {
	c.elementwise("add", addShader, dst, uniform(dst.Len()), a, b)
}

// Sub writes a - b into dst.
func (c *Context) Sub(dst, a, b la.Buffer) {
	c.elementwise("sub", subShader, dst, uniform(dst.Len()), a, b)
}

// Hadamard writes a * b into dst.
func (c *Context) Hadamard(dst, a, b la.Buffer) {
	c.elementwise("hadamard", hadamardShader, dst, uniform(dst.Len()), a, b)
}

// Scale writes src * s into dst.
func (c *Context) Scale(dst, src la.Buffer, s float32) {
	c.elementwise("scale", scaleShader, dst, uniform(dst.Len(), s), src)
}

// DivScalar writes src / s into dst.
func (c *Context) DivScalar(dst, src la.Buffer, s float32) {
	c.elementwise("div_scalar", divScalarShader, dst, uniform(dst.Len(), s), src)
}

// AddScalar writes src + s into dst.
func (c *Context) AddScalar(dst, src la.Buffer, s float32) {
	c.elementwise("add_scalar", addScalarShader, dst, uniform(dst.Len(), s), src)
}

// Log writes ln(src) into dst.
func (c *Context) Log(dst, src la.Buffer) {
	c.elementwise("log", logShader, dst, uniform(dst.Len()), src)
}

// Sigmoid writes 1 / (1 + exp(-src)) into dst.
func (c *Context) Sigmoid(dst, src la.Buffer) {
	c.elementwise("sigmoid", sigmoidShader, dst, uniform(dst.Len()), src)
}

// SigmoidGradient writes y * (1 - y) into dst for sigmoid outputs y.
func (c *Context) SigmoidGradient(dst, src la.Buffer) {
	c.elementwise("sigmoid_gradient", sigmoidGradientShader, dst, uniform(dst.Len()), src)
}

// Tanh writes tanh(src) into dst.
func (c *Context) Tanh(dst, src la.Buffer) {
	c.elementwise("tanh", tanhShader, dst, uniform(dst.Len()), src)
}

// TanhGradient writes 1 - y² into dst for tanh outputs y.
func (c *Context) TanhGradient(dst, src la.Buffer) {
	c.elementwise("tanh_gradient", tanhGradientShader, dst, uniform(dst.Len()), src)
}

// ReLU writes max(0, src) into dst.
func (c *Context) ReLU(dst, src la.Buffer) {
	c.elementwise("relu", reluShader, dst, uniform(dst.Len()), src)
}

// ReLUGradient writes 1 where src > 0 and 0 elsewhere.
func (c *Context) ReLUGradient(dst, src la.Buffer) {
	c.elementwise("relu_gradient", reluGradientShader, dst, uniform(dst.Len()), src)
}

// MatMul computes dst(m,n) = a(m,k) @ b(k,n).
func (c *Context) MatMul(dst, a, b la.Buffer, m, k, n int) {
	c.run(kernel{
		name:    "matmul",
		code:    matmulShader,
		buffers: []*Buffer{device(a), device(b), device(dst)},
		params:  uniform(m, k, n),
		groupsX: groups(n, tileSize),
		groupsY: groups(m, tileSize),
	})
}

// Transpose writes srcᵀ into dst.
func (c *Context) Transpose(dst, src la.Buffer, rows, cols int) {
	c.run(kernel{
		name:    "transpose",
		code:    transposeShader,
		buffers: []*Buffer{device(src), device(dst)},
		params:  uniform(rows, cols),
		groupsX: groups(cols, tileSize),
		groupsY: groups(rows, tileSize),
	})
}

// Concat writes [a | b] into dst.
func (c *Context) Concat(dst, a, b la.Buffer, rows, colsA, colsB int) {
	c.run(kernel{
		name:    "concat",
		code:    concatShader,
		buffers: []*Buffer{device(a), device(b), device(dst)},
		params:  uniform(rows, colsA, colsB),
		groupsX: groups(colsA+colsB, tileSize),
		groupsY: groups(rows, tileSize),
	})
}

// Slice copies the block src[row:row+rows, col:col+cols] into dst.
func (c *Context) Slice(dst, src la.Buffer, srcCols, row, col, rows, cols int) {
	c.run(kernel{
		name:    "slice",
		code:    sliceShader,
		buffers: []*Buffer{device(src), device(dst)},
		params:  uniform(srcCols, row, col, rows, cols),
		groupsX: groups(cols, tileSize),
		groupsY: groups(rows, tileSize),
	})
}

// SumRows writes the sum of each column of src into dst.
func (c *Context) SumRows(dst, src la.Buffer, rows, cols int) {
	c.run(kernel{
		name:    "sum_rows",
		code:    sumRowsShader,
		buffers: []*Buffer{device(src), device(dst)},
		params:  uniform(rows, cols),
		groupsX: groups(cols, workgroupSize),
	})
}

// SumColumns writes the sum of each row of src into dst.
func (c *Context) SumColumns(dst, src la.Buffer, rows, cols int) {
	c.run(kernel{
		name:    "sum_columns",
		code:    sumColumnsShader,
		buffers: []*Buffer{device(src), device(dst)},
		params:  uniform(rows, cols),
		groupsX: groups(rows, workgroupSize),
	})
}

// Softmax writes the row-wise softmax of src into dst.
func (c *Context) Softmax(dst, src la.Buffer, rows, cols int) {
	c.run(kernel{
		name:    "softmax",
		code:    softmaxShader,
		buffers: []*Buffer{device(src), device(dst)},
		params:  uniform(rows, cols),
		groupsX: groups(rows, workgroupSize),
	})
}
