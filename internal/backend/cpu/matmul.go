package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/dense/internal/la"
)

// general wraps row-major storage as a BLAS matrix.
func general(data []float32, rows, cols int) blas32.General {
	return blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

// MatMul computes dst(m,n) = a(m,k) @ b(k,n) with SGEMM.
func (c *Context) MatMul(dst, a, b la.Buffer, m, k, n int) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		general(host(a), m, k),
		general(host(b), k, n),
		0,
		general(host(dst), m, n))
}
