package cpu

import (
	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/parallel"
)

// SumRows writes the sum of each column of src into dst (1 x cols).
// Rows are accumulated top to bottom.
func (c *Context) SumRows(dst, src la.Buffer, rows, cols int) {
	out, in := host(dst), host(src)
	parallel.Rows(cols, rows, func(j int) {
		var sum float32
		for r := 0; r < rows; r++ {
			sum += in[r*cols+j]
		}
		out[j] = sum
	}, c.par)
}

// SumColumns writes the sum of each row of src into dst (rows x 1).
func (c *Context) SumColumns(dst, src la.Buffer, rows, cols int) {
	out, in := host(dst), host(src)
	parallel.Rows(rows, cols, func(r int) {
		var sum float32
		for _, v := range in[r*cols : (r+1)*cols] {
			sum += v
		}
		out[r] = sum
	}, c.par)
}
