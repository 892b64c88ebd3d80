package la

import "runtime"

// sameContext fails with ErrContextMismatch when other is bound to a
// different context than m.
func (m *Matrix) sameContext(other *Matrix) error {
	if m.ctx != other.ctx {
		return ErrContextMismatch
	}
	return nil
}

func (m *Matrix) sameShape(op string, other *Matrix) error {
	if err := m.sameContext(other); err != nil {
		return err
	}
	if m.Size() != other.Size() {
		return errDims(op, m.Size(), other.Size())
	}
	return nil
}

// binary validates operands, allocates the result and dispatches fn.
//
// Operands are kept alive until dispatch returns; otherwise the storage
// cleanup of a temporary operand may release its buffer mid-call.
func (m *Matrix) binary(op string, other *Matrix, fn func(dst, a, b Buffer)) (*Matrix, error) {
	if err := m.sameShape(op, other); err != nil {
		return nil, err
	}
	result := alloc(m.ctx, m.rows, m.cols)
	if !result.Empty() {
		fn(result.buf(), m.buf(), other.buf())
	}
	runtime.KeepAlive(m)
	runtime.KeepAlive(other)
	return result, nil
}

// unary allocates a same-shaped result and dispatches fn.
func (m *Matrix) unary(fn func(dst, src Buffer)) *Matrix {
	result := alloc(m.ctx, m.rows, m.cols)
	if !result.Empty() {
		fn(result.buf(), m.buf())
	}
	runtime.KeepAlive(m)
	return result
}

// Add returns m + other.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	return m.binary("+", other, m.ctx.Add)
}

// Sub returns m - other.
func (m *Matrix) Sub(other *Matrix) (*Matrix, error) {
	return m.binary("-", other, m.ctx.Sub)
}

// Hadamard returns the element-wise product of m and other.
func (m *Matrix) Hadamard(other *Matrix) (*Matrix, error) {
	return m.binary(".*", other, m.ctx.Hadamard)
}

// MatMul returns the matrix product m @ other.
// Requires m.Cols() == other.Rows(); the result is m.Rows() x other.Cols().
func (m *Matrix) MatMul(other *Matrix) (*Matrix, error) {
	if err := m.sameContext(other); err != nil {
		return nil, err
	}
	if m.cols != other.rows {
		return nil, errDims("*", m.Size(), other.Size())
	}
	if m.cols == 0 {
		// Empty shared dimension: every sum is zero.
		return New(m.ctx, m.rows, other.cols)
	}
	result := alloc(m.ctx, m.rows, other.cols)
	if !result.Empty() {
		m.ctx.MatMul(result.buf(), m.buf(), other.buf(), m.rows, m.cols, other.cols)
	}
	runtime.KeepAlive(m)
	runtime.KeepAlive(other)
	return result, nil
}

// Scale returns m * s.
func (m *Matrix) Scale(s float32) *Matrix {
	return m.unary(func(dst, src Buffer) { m.ctx.Scale(dst, src, s) })
}

// Div returns m / s. Division by zero follows IEEE-754 semantics.
func (m *Matrix) Div(s float32) *Matrix {
	return m.unary(func(dst, src Buffer) { m.ctx.DivScalar(dst, src, s) })
}

// AddScalar returns m + s.
func (m *Matrix) AddScalar(s float32) *Matrix {
	return m.unary(func(dst, src Buffer) { m.ctx.AddScalar(dst, src, s) })
}

// SubScalar returns m - s.
func (m *Matrix) SubScalar(s float32) *Matrix {
	return m.AddScalar(-s)
}

// Log returns the element-wise natural logarithm.
func (m *Matrix) Log() *Matrix {
	return m.unary(m.ctx.Log)
}

// Clone returns a copy of m on the same context.
func (m *Matrix) Clone() *Matrix {
	return m.Scale(1)
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	result := alloc(m.ctx, m.cols, m.rows)
	if !result.Empty() {
		m.ctx.Transpose(result.buf(), m.buf(), m.rows, m.cols)
	}
	runtime.KeepAlive(m)
	return result
}

// Concat returns the horizontal concatenation [m | other].
// Requires m.Rows() == other.Rows().
func (m *Matrix) Concat(other *Matrix) (*Matrix, error) {
	if err := m.sameContext(other); err != nil {
		return nil, err
	}
	if m.rows != other.rows {
		return nil, errDims("<<", m.Size(), other.Size())
	}
	switch {
	case m.rows == 0:
		return New(m.ctx, 0, m.cols+other.cols)
	case other.cols == 0:
		return m.Clone(), nil
	case m.cols == 0:
		return other.Clone(), nil
	}
	result := alloc(m.ctx, m.rows, m.cols+other.cols)
	m.ctx.Concat(result.buf(), m.buf(), other.buf(), m.rows, m.cols, other.cols)
	runtime.KeepAlive(m)
	runtime.KeepAlive(other)
	return result, nil
}

// SubMatrix returns a copy of rows [r0, r1) and columns [c0, c1).
func (m *Matrix) SubMatrix(r0, r1, c0, c1 int) (*Matrix, error) {
	if r0 < 0 || r1 > m.rows || r0 > r1 {
		return nil, errRange("row", r0, r1, m.rows)
	}
	if c0 < 0 || c1 > m.cols || c0 > c1 {
		return nil, errRange("column", c0, c1, m.cols)
	}
	result := alloc(m.ctx, r1-r0, c1-c0)
	if !result.Empty() {
		m.ctx.Slice(result.buf(), m.buf(), m.cols, r0, c0, r1-r0, c1-c0)
	}
	runtime.KeepAlive(m)
	return result, nil
}

// Row returns a 1 x Cols copy of row i.
func (m *Matrix) Row(i int) (*Matrix, error) {
	if i < 0 || i >= m.rows {
		return nil, errIndex("row", i, m.rows)
	}
	return m.SubMatrix(i, i+1, 0, m.cols)
}

// RowRange returns a copy of rows [start, end).
func (m *Matrix) RowRange(start, end int) (*Matrix, error) {
	return m.SubMatrix(start, end, 0, m.cols)
}

// Column returns a Rows x 1 copy of column i.
func (m *Matrix) Column(i int) (*Matrix, error) {
	if i < 0 || i >= m.cols {
		return nil, errIndex("column", i, m.cols)
	}
	return m.SubMatrix(0, m.rows, i, i+1)
}

// ColumnRange returns a copy of columns [start, end).
func (m *Matrix) ColumnRange(start, end int) (*Matrix, error) {
	return m.SubMatrix(0, m.rows, start, end)
}

// SumRows returns a 1 x Cols matrix holding the sum of each column.
func (m *Matrix) SumRows() *Matrix {
	result := alloc(m.ctx, 1, m.cols)
	if result.Empty() {
		return result
	}
	if m.rows == 0 {
		m.ctx.Upload(result.buf(), make([]float32, m.cols))
		return result
	}
	m.ctx.SumRows(result.buf(), m.buf(), m.rows, m.cols)
	runtime.KeepAlive(m)
	return result
}

// SumColumns returns a Rows x 1 matrix holding the sum of each row.
func (m *Matrix) SumColumns() *Matrix {
	result := alloc(m.ctx, m.rows, 1)
	if result.Empty() {
		return result
	}
	if m.cols == 0 {
		m.ctx.Upload(result.buf(), make([]float32, m.rows))
		return result
	}
	m.ctx.SumColumns(result.buf(), m.buf(), m.rows, m.cols)
	runtime.KeepAlive(m)
	return result
}

// Sum returns the sum of all elements.
func (m *Matrix) Sum() float32 {
	if m.Empty() {
		return 0
	}
	rowSums := m.SumColumns()
	defer rowSums.Release()
	sums := rowSums.SumRows()
	defer sums.Release()
	return m.ctx.Get(sums.buf(), 0)
}

// Sigmoid returns 1 / (1 + exp(-m)) element-wise.
func (m *Matrix) Sigmoid() *Matrix {
	return m.unary(m.ctx.Sigmoid)
}

// SigmoidGradient returns y * (1 - y) for sigmoid outputs y = m.
func (m *Matrix) SigmoidGradient() *Matrix {
	return m.unary(m.ctx.SigmoidGradient)
}

// Tanh returns tanh(m) element-wise.
func (m *Matrix) Tanh() *Matrix {
	return m.unary(m.ctx.Tanh)
}

// TanhGradient returns 1 - y² for tanh outputs y = m.
func (m *Matrix) TanhGradient() *Matrix {
	return m.unary(m.ctx.TanhGradient)
}

// ReLU returns max(0, m) element-wise.
func (m *Matrix) ReLU() *Matrix {
	return m.unary(m.ctx.ReLU)
}

// ReLUGradient returns 1 where m > 0 and 0 elsewhere.
func (m *Matrix) ReLUGradient() *Matrix {
	return m.unary(m.ctx.ReLUGradient)
}

// Softmax returns the row-wise softmax of m.
func (m *Matrix) Softmax() *Matrix {
	return m.unary(func(dst, src Buffer) { m.ctx.Softmax(dst, src, m.rows, m.cols) })
}
