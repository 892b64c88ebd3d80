// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/backend/cpu"
	"github.com/born-ml/dense/la"
	"github.com/born-ml/dense/model"
	"github.com/born-ml/dense/nn"
)

func TestStoreLoad(t *testing.T) {
	ctx := cpu.New()
	net := nn.NewNetwork()
	layer, err := nn.NewLayer(ctx, nn.NewReLU(), 3, 2)
	require.NoError(t, err)
	require.NoError(t, net.Add(layer))

	dir := filepath.Join(t.TempDir(), "relu")
	require.NoError(t, model.Store(dir, net))

	manifest, err := model.ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, []model.LayerRecord{{Activation: "relu", InputSize: 3, OutputSize: 2, Weights: "layer.0.weights"}}, manifest.Layers)

	restored := nn.NewNetwork()
	require.NoError(t, model.Load(dir, restored, ctx))
	got, err := restored.Layer(0)
	require.NoError(t, err)
	assert.True(t, layer.Weights().Equal(got.Weights()))

	features, err := la.Full(ctx, 2, 3, 1)
	require.NoError(t, err)
	want, err := net.Forward(features)
	require.NoError(t, err)
	have, err := restored.Forward(features)
	require.NoError(t, err)
	assert.True(t, want.Equal(have))
}

func TestStore_RefusesForeignDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600))

	net := nn.NewNetwork()
	layer, err := nn.NewLayer(cpu.New(), nn.NewSigmoid(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, net.Add(layer))

	assert.ErrorIs(t, model.Store(dir, net), model.ErrNotModelDirectory)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}
