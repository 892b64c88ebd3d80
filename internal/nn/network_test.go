package nn_test

import (
	"math/rand"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
)

func newNetwork(t *testing.T, ctx la.Context, rng *rand.Rand, acts []nn.Activation, sizes ...int) *nn.Network {
	t.Helper()
	net := nn.NewNetwork()
	for i := 0; i+1 < len(sizes); i++ {
		layer, err := nn.NewLayerWithRand(ctx, acts[i], sizes[i], sizes[i+1], rng)
		require.NoError(t, err)
		require.NoError(t, net.Add(layer))
	}
	return net
}

func TestNetwork_Add(t *testing.T) {
	ctx := cpu.New()
	net := nn.NewNetwork()
	assert.Zero(t, net.Size())
	assert.Nil(t, net.Context())

	first, _ := nn.NewLayer(ctx, nn.NewSigmoid(), 4, 3)
	require.NoError(t, net.Add(first))
	assert.Equal(t, 1, net.Size())

	mismatched, _ := nn.NewLayer(ctx, nn.NewSigmoid(), 4, 2)
	assert.ErrorIs(t, net.Add(mismatched), nn.ErrInvalidConfiguration)
	assert.Equal(t, 1, net.Size())

	matching, _ := nn.NewLayer(ctx, nn.NewSoftmax(), 3, 2)
	require.NoError(t, net.Add(matching))
	assert.Equal(t, 2, net.Size())
	assert.Equal(t, 4, net.InputSize())
	assert.Equal(t, 2, net.OutputSize())

	other, _ := nn.NewLayer(cpu.New(), nn.NewSigmoid(), 2, 2)
	err := net.Add(other)
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)
	assert.ErrorIs(t, err, la.ErrContextMismatch)

	l, err := net.Layer(1)
	require.NoError(t, err)
	assert.Same(t, matching, l)
	_, err = net.Layer(2)
	assert.ErrorIs(t, err, la.ErrIndexOutOfRange)
	assert.Len(t, net.Layers(), 2)
}

func TestNetwork_Forward(t *testing.T) {
	ctx := cpu.New()
	rng := rand.New(rand.NewSource(7))
	net := newNetwork(t, ctx, rng, []nn.Activation{nn.NewTanh(), nn.NewSoftmax()}, 3, 5, 2)

	features := matrix(t, ctx, []float32{1, 0, -1}, []float32{0.5, 0.5, 0.5}, []float32{0, 0, 0}, []float32{2, 1, 0})
	out, err := net.Forward(features)
	require.NoError(t, err)
	assert.Equal(t, la.Size{Rows: 4, Cols: 2}, out.Size())
	for _, row := range out.ToRows() {
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-6)
	}

	_, err = net.Forward(matrix(t, ctx, []float32{1, 2}))
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)

	empty, err := nn.NewNetwork().Forward(features)
	require.NoError(t, err)
	assert.True(t, empty.Equal(features))
}

func TestNetwork_BackwardMatchesNumericalGradient(t *testing.T) {
	ctx := cpu.New()
	rng := rand.New(rand.NewSource(3))
	net := newNetwork(t, ctx, rng, []nn.Activation{nn.NewTanh(), nn.NewSigmoid()}, 2, 3, 2)
	cost := nn.NewSquaredError()

	features := matrix(t, ctx, []float32{0.5, -1}, []float32{1, 0.25}, []float32{-0.5, 0.75})
	targets := matrix(t, ctx, []float32{1, 0}, []float32{0, 1}, []float32{1, 1})

	before := net.Layers()[0].Weights().Data()
	_, gradients, err := net.Backward(features, targets, cost)
	require.NoError(t, err)
	require.Len(t, gradients, 2)
	assert.Equal(t, before, net.Layers()[0].Weights().Data(), "backward must not touch weights")

	const h = 1e-2
	for li, layer := range net.Layers() {
		require.Equal(t, layer.Weights().Size(), gradients[li].Size())
		analytic := gradients[li].Data()
		for i := range analytic {
			r, c := i/layer.Weights().Cols(), i%layer.Weights().Cols()
			w, _ := layer.Weights().At(r, c)

			require.NoError(t, layer.Weights().Set(r, c, w+h))
			plus, _, err := net.Backward(features, targets, cost)
			require.NoError(t, err)
			require.NoError(t, layer.Weights().Set(r, c, w-h))
			minus, _, err := net.Backward(features, targets, cost)
			require.NoError(t, err)
			require.NoError(t, layer.Weights().Set(r, c, w))

			numeric := (plus - minus) / (2 * h)
			assert.InDelta(t, numeric, analytic[i], 2e-3, "layer %d weight (%d,%d)", li, r, c)
		}
	}
}

func TestNetwork_BackwardErrors(t *testing.T) {
	ctx := cpu.New()
	_, _, err := nn.NewNetwork().Backward(matrix(t, ctx, []float32{1}), matrix(t, ctx, []float32{1}), nn.NewSquaredError())
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)

	net := newNetwork(t, ctx, nil, []nn.Activation{nn.NewSigmoid()}, 2, 1)
	_, _, err = net.Backward(matrix(t, ctx, []float32{1, 2}), matrix(t, ctx, []float32{1}, []float32{0}), nn.NewSquaredError())
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
}

// buildInScope creates layers whose local references die with the call.
func buildInScope(t *testing.T, ctx la.Context) *nn.Network {
	net := nn.NewNetwork()
	for _, size := range [][2]int{{2, 4}, {4, 1}} {
		layer, err := nn.NewLayer(ctx, nn.NewSigmoid(), size[0], size[1])
		require.NoError(t, err)
		require.NoError(t, net.Add(layer))
	}
	return net
}

func TestNetwork_LayersOutliveTheirScope(t *testing.T) {
	ctx := cpu.New()
	net := buildInScope(t, ctx)
	runtime.GC()
	runtime.GC()

	out, err := net.Forward(matrix(t, ctx, []float32{0.1, 0.2}))
	require.NoError(t, err)
	assert.Equal(t, la.Size{Rows: 1, Cols: 1}, out.Size())
}
