package la

import (
	"fmt"
	"iter"
	"runtime"
	"strings"
	"sync"
)

// Size is a (rows, columns) pair.
type Size struct {
	Rows int
	Cols int
}

// NumElements returns Rows * Cols.
func (s Size) NumElements() int {
	return s.Rows * s.Cols
}

// String returns "RxC".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// storage owns a backend buffer and releases it exactly once.
type storage struct {
	ctx  Context
	buf  Buffer
	once sync.Once
}

func (s *storage) release() {
	s.once.Do(func() {
		if s.buf != nil {
			s.ctx.Release(s.buf)
		}
		s.buf = nil
	})
}

// Matrix is a dense row-major 2D container bound to one Context.
//
// Rows and columns are fixed for the lifetime of the instance. Storage is
// returned to the Context by Release, or by the garbage collector once the
// Matrix becomes unreachable.
//
// A Matrix is not safe for concurrent use.
type Matrix struct {
	ctx  Context
	rows int
	cols int
	data *storage
}

// alloc creates a matrix with uninitialized storage.
func alloc(ctx Context, rows, cols int) *Matrix {
	m := &Matrix{
		ctx:  ctx,
		rows: rows,
		cols: cols,
		data: &storage{ctx: ctx},
	}
	if n := rows * cols; n > 0 {
		m.data.buf = ctx.Allocate(n)
		runtime.AddCleanup(m, func(s *storage) { s.release() }, m.data)
	}
	return m
}

func validateSize(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrIncompatibleDimensions, rows, cols)
	}
	return nil
}

// New creates a zero-filled rows x cols matrix.
func New(ctx Context, rows, cols int) (*Matrix, error) {
	return Full(ctx, rows, cols, 0)
}

// Full creates a rows x cols matrix with every element set to fill.
func Full(ctx Context, rows, cols int, fill float32) (*Matrix, error) {
	if err := validateSize(rows, cols); err != nil {
		return nil, err
	}
	m := alloc(ctx, rows, cols)
	if n := rows * cols; n > 0 {
		values := make([]float32, n)
		if fill != 0 {
			for i := range values {
				values[i] = fill
			}
		}
		ctx.Upload(m.buf(), values)
	}
	return m, nil
}

// FullSize creates a matrix of the given size with every element set to fill.
func FullSize(ctx Context, size Size, fill float32) (*Matrix, error) {
	return Full(ctx, size.Rows, size.Cols, fill)
}

// FromSlice creates a rows x cols matrix from row-major values.
// The values are copied; the matrix never aliases the slice.
func FromSlice(ctx Context, rows, cols int, values []float32) (*Matrix, error) {
	if err := validateSize(rows, cols); err != nil {
		return nil, err
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d matrix", ErrIncompatibleDimensions, len(values), rows, cols)
	}
	m := alloc(ctx, rows, cols)
	if len(values) > 0 {
		ctx.Upload(m.buf(), values)
	}
	return m, nil
}

// FromRows creates a matrix from nested rows.
// The column count is the length of the longest row; shorter rows are
// padded with zeros. Values are copied.
func FromRows(ctx Context, rows [][]float32) (*Matrix, error) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	values := make([]float32, len(rows)*cols)
	for m, row := range rows {
		copy(values[m*cols:], row)
	}
	return FromSlice(ctx, len(rows), cols, values)
}

func (m *Matrix) buf() Buffer {
	return m.data.buf
}

// Context returns the execution context the matrix is bound to.
func (m *Matrix) Context() Context {
	return m.ctx
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return m.cols
}

// Size returns the (rows, columns) pair.
func (m *Matrix) Size() Size {
	return Size{Rows: m.rows, Cols: m.cols}
}

// NumElements returns Rows * Cols.
func (m *Matrix) NumElements() int {
	return m.rows * m.cols
}

// Empty reports whether the matrix holds no elements.
func (m *Matrix) Empty() bool {
	return m.NumElements() == 0
}

// Release returns the matrix storage to its context.
// The matrix must not be used afterwards. Calling Release twice is a no-op.
func (m *Matrix) Release() {
	if m == nil || m.data == nil {
		return
	}
	m.data.release()
}

func (m *Matrix) checkIndex(r, c int) error {
	if r < 0 || r >= m.rows {
		return errIndex("row", r, m.rows)
	}
	if c < 0 || c >= m.cols {
		return errIndex("column", c, m.cols)
	}
	return nil
}

// At returns the element at (r, c).
func (m *Matrix) At(r, c int) (float32, error) {
	if err := m.checkIndex(r, c); err != nil {
		return 0, err
	}
	v := m.ctx.Get(m.buf(), r*m.cols+c)
	runtime.KeepAlive(m)
	return v, nil
}

// Set writes v at (r, c).
func (m *Matrix) Set(r, c int, v float32) error {
	if err := m.checkIndex(r, c); err != nil {
		return err
	}
	m.ctx.Set(m.buf(), r*m.cols+c, v)
	runtime.KeepAlive(m)
	return nil
}

// Data returns a host copy of the elements in row-major order.
func (m *Matrix) Data() []float32 {
	if m.Empty() {
		return []float32{}
	}
	data := m.ctx.Download(m.buf())
	runtime.KeepAlive(m)
	return data
}

// ToRows returns a host copy of the elements as nested rows.
func (m *Matrix) ToRows() [][]float32 {
	data := m.Data()
	rows := make([][]float32, m.rows)
	for r := range rows {
		rows[r] = data[r*m.cols : (r+1)*m.cols : (r+1)*m.cols]
	}
	return rows
}

// All returns a sequence over the rows of the matrix.
// Each row is yielded as a fresh 1 x Cols matrix. The sequence is lazy and
// may be ranged over any number of times.
func (m *Matrix) All() iter.Seq2[int, *Matrix] {
	return func(yield func(int, *Matrix) bool) {
		for r := 0; r < m.rows; r++ {
			row, err := m.Row(r)
			if err != nil {
				return
			}
			if !yield(r, row) {
				return
			}
		}
	}
}

// Equal reports whether other lives on the same kind of backend and has the
// same size and element values. Contexts of one kind compare by value.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.ctx.Kind() != other.ctx.Kind() || m.Size() != other.Size() {
		return false
	}
	a, b := m.Data(), other.Data()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String formats the matrix as tab separated rows.
func (m *Matrix) String() string {
	var sb strings.Builder
	for _, row := range m.ToRows() {
		for _, v := range row {
			fmt.Fprintf(&sb, "%g\t", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
