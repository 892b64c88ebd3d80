//go:build windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/la"
)

// openDefault opens the first enumerated device or skips the test.
func openDefault(t *testing.T) *Context {
	t.Helper()
	devices := Devices()
	if len(devices) == 0 {
		t.Skip("WebGPU not available on this system")
	}
	ctx, err := New(devices[0])
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(ctx.Close)
	return ctx
}

func TestDevices(t *testing.T) {
	for _, d := range Devices() {
		t.Logf("device: %s", d)
		assert.Equal(t, backendName, d.Backend)
	}
}

func TestNew_UnknownDevice(t *testing.T) {
	_, err := New(la.Device{ID: 7, Name: "ghost", Backend: "Vulkan"})
	assert.ErrorIs(t, err, la.ErrDeviceUnavailable)
}

func TestContext_Metadata(t *testing.T) {
	ctx := openDefault(t)
	assert.Equal(t, la.Accelerator, ctx.Kind())
	assert.Contains(t, ctx.Name(), backendName)
}

func TestContext_StorageRoundTrip(t *testing.T) {
	ctx := openDefault(t)

	buf := ctx.Allocate(5)
	ctx.Upload(buf, []float32{1, 2, 3, 4, 5})
	ctx.Set(buf, 3, -8)

	assert.Equal(t, float32(-8), ctx.Get(buf, 3))
	assert.Equal(t, []float32{1, 2, 3, -8, 5}, ctx.Download(buf))
}

func TestContext_MatchesHost(t *testing.T) {
	gpu := openDefault(t)
	host := cpu.New()

	a := [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {-1, 0.5, 2}}
	b := [][]float32{{0.5, -1}, {2, 0}, {1, 3}}

	type result struct {
		product, transposed, concat, block, colSums, rowSums, sigmoid, softmax []float32
	}
	compute := func(ctx la.Context) result {
		ma, err := la.FromRows(ctx, a)
		require.NoError(t, err)
		mb, err := la.FromRows(ctx, b)
		require.NoError(t, err)

		product, err := ma.MatMul(mb)
		require.NoError(t, err)
		wide, err := ma.Concat(product)
		require.NoError(t, err)
		block, err := wide.SubMatrix(1, 3, 2, 5)
		require.NoError(t, err)

		return result{
			product:    product.Data(),
			transposed: ma.Transpose().Data(),
			concat:     wide.Data(),
			block:      block.Data(),
			colSums:    ma.SumRows().Data(),
			rowSums:    ma.SumColumns().Data(),
			sigmoid:    ma.Sigmoid().Data(),
			softmax:    ma.Softmax().Data(),
		}
	}

	want := compute(host)
	got := compute(gpu)

	assert.Equal(t, want.product, got.product)
	assert.Equal(t, want.transposed, got.transposed)
	assert.Equal(t, want.concat, got.concat)
	assert.Equal(t, want.block, got.block)
	assert.Equal(t, want.colSums, got.colSums)
	assert.Equal(t, want.rowSums, got.rowSums)
	assert.InDeltaSlice(t, want.sigmoid, got.sigmoid, 1e-5)
	assert.InDeltaSlice(t, want.softmax, got.softmax, 1e-5)
}

func TestContext_ElementWise(t *testing.T) {
	ctx := openDefault(t)

	a, err := la.FromRows(ctx, [][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)
	b, err := la.Full(ctx, 2, 2, 2)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4, 5, 6}, sum.Data())

	prod, err := a.Hadamard(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4, 6, 8}, prod.Data())

	assert.Equal(t, []float32{0.5, 1, 1.5, 2}, a.Div(2).Data())
	assert.Equal(t, []float32{0, 1, 2, 3}, a.SubScalar(1).Data())
	assert.Equal(t, []float32{1, 1, 1, 1}, a.ReLUGradient().Data())
}

func TestContext_ReusesReleasedBuffers(t *testing.T) {
	ctx := openDefault(t)

	var arena la.Arena
	for range 3 {
		m, err := arena.TrackErr(la.Full(ctx, 8, 8, 1))
		require.NoError(t, err)
		arena.Track(m.Scale(2))
		arena.Release()
	}

	stats := ctx.PoolStats()
	assert.Positive(t, stats.Hits)
	assert.LessOrEqual(t, stats.Created, uint64(2))
}
