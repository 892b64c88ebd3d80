package dataset_test

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/dataset"
	"github.com/born-ml/dense/internal/la"
)

func idxImages(t *testing.T, images [][]byte, rows, cols uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{2051, uint32(len(images)), rows, cols}))
	for _, img := range images {
		buf.Write(img)
	}
	return buf.Bytes()
}

func idxLabels(t *testing.T, labels []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{2049, uint32(len(labels))}))
	buf.Write(labels)
	return buf.Bytes()
}

func TestReadIDXImages(t *testing.T) {
	raw := idxImages(t, [][]byte{{0, 255, 51, 102}, {255, 255, 0, 0}, {1, 2, 3, 4}}, 2, 2)

	m, err := dataset.ReadIDXImages(bytes.NewReader(raw), cpu.New(), 2)
	require.NoError(t, err)
	assert.Equal(t, la.Size{Rows: 2, Cols: 4}, m.Size())
	assert.InDeltaSlice(t, []float32{0, 1, 0.2, 0.4, 1, 1, 0, 0}, m.Data(), 1e-6)

	raw[3] = 1
	_, err = dataset.ReadIDXImages(bytes.NewReader(raw), cpu.New(), 0)
	assert.ErrorContains(t, err, "invalid idx image magic")
}

func TestReadIDXLabels(t *testing.T) {
	m, err := dataset.ReadIDXLabels(bytes.NewReader(idxLabels(t, []byte{7, 2, 1})), cpu.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{7}, {2}, {1}}, m.ToRows())

	truncated := idxLabels(t, []byte{7, 2, 1})
	_, err = dataset.ReadIDXLabels(bytes.NewReader(truncated[:len(truncated)-1]), cpu.New(), 0)
	assert.Error(t, err)
}

func TestReadIDXFiles(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images.idx")
	labels := filepath.Join(dir, "labels.idx")
	require.NoError(t, os.WriteFile(images, idxImages(t, [][]byte{{0, 255}, {255, 0}}, 1, 2), 0o600))
	require.NoError(t, os.WriteFile(labels, idxLabels(t, []byte{3}), 0o600))

	_, _, err := dataset.ReadIDXFiles(images, labels, cpu.New(), 0)
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)

	require.NoError(t, os.WriteFile(labels, idxLabels(t, []byte{3, 4}), 0o600))
	l, f, err := dataset.ReadIDXFiles(images, labels, cpu.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, l.Data())
	assert.Equal(t, la.Size{Rows: 2, Cols: 2}, f.Size())
}

func TestSplit(t *testing.T) {
	ctx := cpu.New()
	features, err := la.FromRows(ctx, [][]float32{{0, 0}, {1, 10}, {2, 20}, {3, 30}, {4, 40}})
	require.NoError(t, err)
	targets, err := la.FromRows(ctx, [][]float32{{0}, {1}, {2}, {3}, {4}})
	require.NoError(t, err)

	train, validation, err := dataset.Split(features, targets, 0.6, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2}, train.Targets.Data())
	assert.Equal(t, []float32{3, 4}, validation.Targets.Data())
	assert.Equal(t, [][]float32{{3, 30}, {4, 40}}, validation.Features.ToRows())

	train, validation, err = dataset.Split(features, targets, 0.8, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Equal(t, 4, train.Features.Rows())
	assert.Equal(t, 1, validation.Features.Rows())
	for _, set := range []dataset.Set{train, validation} {
		for r, row := range set.Features.ToRows() {
			label, err := set.Targets.At(r, 0)
			require.NoError(t, err)
			assert.Equal(t, []float32{label, 10 * label}, row, "rows stay paired")
		}
	}

	_, _, err = dataset.Split(features, targets, 1.5, nil)
	assert.Error(t, err)
	short, err := targets.RowRange(0, 2)
	require.NoError(t, err)
	_, _, err = dataset.Split(features, short, 0.5, nil)
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
}
