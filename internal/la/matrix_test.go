package la_test

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/la"
)

func fromRows(t *testing.T, ctx la.Context, rows ...[]float32) *la.Matrix {
	t.Helper()
	m, err := la.FromRows(ctx, rows)
	require.NoError(t, err)
	return m
}

func TestFull(t *testing.T) {
	ctx := cpu.New()

	m, err := la.Full(ctx, 2, 3, 1.5)
	require.NoError(t, err)
	assert.Equal(t, la.Size{Rows: 2, Cols: 3}, m.Size())
	for _, v := range m.Data() {
		assert.Equal(t, float32(1.5), v)
	}

	zeros, err := la.New(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 6), zeros.Data())

	same, err := la.FullSize(ctx, la.Size{Rows: 2, Cols: 3}, 1.5)
	require.NoError(t, err)
	assert.True(t, m.Equal(same))
}

func TestFull_NegativeSize(t *testing.T) {
	_, err := la.Full(cpu.New(), -1, 3, 0)
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
}

func TestEmptyMatrix(t *testing.T) {
	ctx := cpu.New()
	m, err := la.New(ctx, 0, 4)
	require.NoError(t, err)

	assert.True(t, m.Empty())
	assert.Equal(t, 0, m.Rows())
	assert.Equal(t, 4, m.Cols())
	assert.Empty(t, m.Data())

	count := 0
	for range m.All() {
		count++
	}
	assert.Zero(t, count)
}

func TestFromSlice_CopiesInput(t *testing.T) {
	values := []float32{1, 2, 3, 4}
	m, err := la.FromSlice(cpu.New(), 2, 2, values)
	require.NoError(t, err)

	values[0] = 99
	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), v)

	_, err = la.FromSlice(cpu.New(), 2, 3, values)
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
}

func TestFromRows_PadsRaggedRows(t *testing.T) {
	m := fromRows(t, cpu.New(), []float32{1}, []float32{2, 3, 4}, nil)
	assert.Equal(t, la.Size{Rows: 3, Cols: 3}, m.Size())
	assert.Equal(t, []float32{1, 0, 0, 2, 3, 4, 0, 0, 0}, m.Data())
}

func TestDataIsACopy(t *testing.T) {
	m := fromRows(t, cpu.New(), []float32{1, 2})
	data := m.Data()
	data[1] = 42
	assert.Equal(t, []float32{1, 2}, m.Data())
}

func TestAtSet(t *testing.T) {
	m := fromRows(t, cpu.New(), []float32{1, 2}, []float32{3, 4})

	require.NoError(t, m.Set(1, 0, 9))
	v, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(9), v)

	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		_, err := m.At(idx[0], idx[1])
		assert.ErrorIs(t, err, la.ErrIndexOutOfRange, "At%v", idx)
		assert.ErrorIs(t, m.Set(idx[0], idx[1], 0), la.ErrIndexOutOfRange, "Set%v", idx)
	}
	assert.Equal(t, []float32{1, 2, 9, 4}, m.Data(), "failed Set must not mutate")
}

func TestAll_YieldsRowsInOrder(t *testing.T) {
	m := fromRows(t, cpu.New(), []float32{1, 2}, []float32{3, 4}, []float32{5, 6})

	var got [][]float32
	for i, row := range m.All() {
		assert.Equal(t, len(got), i)
		assert.Equal(t, la.Size{Rows: 1, Cols: 2}, row.Size())
		got = append(got, row.Data())
	}
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}, {5, 6}}, got)

	// Restartable and stoppable.
	n := 0
	for range m.All() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestEqualAndString(t *testing.T) {
	a := fromRows(t, cpu.New(), []float32{1, 2.5})
	b := fromRows(t, cpu.New(), []float32{1, 2.5})
	c := fromRows(t, cpu.New(), []float32{1}, []float32{2.5})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "1\t2.5\t\n", a.String())
	assert.Equal(t, [][]float32{{1}, {2.5}}, c.ToRows())

	d := fromRows(t, &acceleratorContext{Context: cpu.New()}, []float32{1, 2.5})
	assert.False(t, a.Equal(d), "different backend kinds")
	assert.False(t, d.Equal(a))
	assert.True(t, d.Equal(fromRows(t, &acceleratorContext{Context: cpu.New()}, []float32{1, 2.5})))
}

// acceleratorContext is a host context reporting the accelerator kind.
type acceleratorContext struct {
	*cpu.Context
}

func (acceleratorContext) Kind() la.Kind { return la.Accelerator }

func TestRelease_Idempotent(t *testing.T) {
	ctx := &countingContext{Context: cpu.New()}
	m, err := la.New(ctx, 2, 2)
	require.NoError(t, err)

	m.Release()
	m.Release()
	assert.Equal(t, int32(1), ctx.released.Load())

	var nilMatrix *la.Matrix
	assert.NotPanics(t, nilMatrix.Release)
}

// countingContext records how many buffers were released.
type countingContext struct {
	*cpu.Context
	released atomic.Int32
}

func (c *countingContext) Release(buf la.Buffer) {
	c.released.Add(1)
	c.Context.Release(buf)
}

// collectingContext runs the garbage collector inside every product and
// transpose, and counts buffers released while a dispatch is running.
type collectingContext struct {
	*cpu.Context
	dispatching atomic.Bool
	early       atomic.Int32
}

func (c *collectingContext) collect() {
	c.dispatching.Store(true)
	for range 3 {
		runtime.GC()
		time.Sleep(time.Millisecond)
	}
	c.dispatching.Store(false)
}

func (c *collectingContext) Transpose(dst, src la.Buffer, rows, cols int) {
	c.collect()
	c.Context.Transpose(dst, src, rows, cols)
}

func (c *collectingContext) MatMul(dst, a, b la.Buffer, m, k, n int) {
	c.collect()
	c.Context.MatMul(dst, a, b, m, k, n)
}

func (c *collectingContext) Release(buf la.Buffer) {
	if c.dispatching.Load() {
		c.early.Add(1)
	}
	c.Context.Release(buf)
}

func filled(t *testing.T, ctx la.Context, rows, cols int) *la.Matrix {
	t.Helper()
	m, err := la.Full(ctx, rows, cols, 1)
	require.NoError(t, err)
	return m
}

func TestTemporaryOperandsSurviveDispatch(t *testing.T) {
	t.Run("transpose", func(t *testing.T) {
		ctx := &collectingContext{Context: cpu.New()}
		transposed := filled(t, ctx, 4, 3).Transpose()
		assert.Equal(t, [][]float32{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}}, transposed.ToRows())
		assert.Zero(t, ctx.early.Load(), "source released during dispatch")
	})

	t.Run("matmul", func(t *testing.T) {
		ctx := &collectingContext{Context: cpu.New()}
		product, err := filled(t, ctx, 2, 3).MatMul(filled(t, ctx, 3, 2))
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{3, 3}, {3, 3}}, product.ToRows())
		assert.Zero(t, ctx.early.Load(), "operand released during dispatch")
	})
}
