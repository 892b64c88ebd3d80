package la_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/la"
)

func TestArena_ReleasesTracked(t *testing.T) {
	ctx := &countingContext{Context: cpu.New()}
	a, err := la.Full(ctx, 2, 2, 1)
	require.NoError(t, err)

	var arena la.Arena
	sum, err := arena.TrackErr(a.Add(a))
	require.NoError(t, err)
	scaled := arena.Track(sum.Scale(3))
	arena.Track(scaled.Transpose())
	require.Equal(t, 3, arena.Len())

	arena.Release(scaled)

	assert.Equal(t, int32(2), ctx.released.Load())
	assert.Zero(t, arena.Len())
	assert.Equal(t, []float32{6, 6, 6, 6}, scaled.Data(), "kept matrices stay usable")
	runtime.KeepAlive(a)
}

func TestArena_TrackErrPassesError(t *testing.T) {
	ctx := cpu.New()
	a, _ := la.New(ctx, 2, 2)
	b, _ := la.New(ctx, 3, 3)

	var arena la.Arena
	m, err := arena.TrackErr(a.Add(b))
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
	assert.Nil(t, m)
	assert.Zero(t, arena.Len())
}
