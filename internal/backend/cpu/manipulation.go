package cpu

import (
	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/parallel"
)

// Transpose writes srcᵀ into dst.
func (c *Context) Transpose(dst, src la.Buffer, rows, cols int) {
	out, in := host(dst), host(src)
	parallel.Rows(rows, cols, func(r int) {
		row := in[r*cols : (r+1)*cols]
		for j, v := range row {
			out[j*rows+r] = v
		}
	}, c.par)
}

// Concat writes [a | b] into dst.
func (c *Context) Concat(dst, a, b la.Buffer, rows, colsA, colsB int) {
	out, left, right := host(dst), host(a), host(b)
	cols := colsA + colsB
	parallel.Rows(rows, cols, func(r int) {
		copy(out[r*cols:], left[r*colsA:(r+1)*colsA])
		copy(out[r*cols+colsA:], right[r*colsB:(r+1)*colsB])
	}, c.par)
}

// Slice copies the block src[row:row+rows, col:col+cols] into dst.
func (c *Context) Slice(dst, src la.Buffer, srcCols, row, col, rows, cols int) {
	out, in := host(dst), host(src)
	parallel.Rows(rows, cols, func(r int) {
		start := (row+r)*srcCols + col
		copy(out[r*cols:(r+1)*cols], in[start:start+cols])
	}, c.par)
}
