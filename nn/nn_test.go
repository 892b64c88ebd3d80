// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/backend/cpu"
	"github.com/born-ml/dense/la"
	"github.com/born-ml/dense/nn"
)

func TestNetwork_PublicAPI(t *testing.T) {
	ctx := cpu.New()
	rng := rand.New(rand.NewSource(3))

	net := nn.NewNetwork()
	hidden, err := nn.NewLayerWithRand(ctx, nn.NewTanh(), 4, 3, rng)
	require.NoError(t, err)
	output, err := nn.NewLayerWithRand(ctx, nn.NewSoftmax(), 3, 2, rng)
	require.NoError(t, err)
	require.NoError(t, net.Add(hidden))
	require.NoError(t, net.Add(output))
	assert.Equal(t, 4, net.InputSize())
	assert.Equal(t, 2, net.OutputSize())

	features, err := la.Full(ctx, 5, 4, 0.5)
	require.NoError(t, err)
	labels := nn.NewRangeLabelMap(2)
	column, err := la.FromSlice(ctx, 5, 1, []float32{0, 1, 0, 1, 1})
	require.NoError(t, err)
	targets, err := labels.ToActivations(column)
	require.NoError(t, err)

	cost, grads, err := net.Backward(features, targets, nn.NewCrossEntropy())
	require.NoError(t, err)
	assert.Greater(t, cost, float32(0))
	require.Len(t, grads, 2)
	assert.Equal(t, hidden.Weights().Size(), grads[0].Size())
	assert.Equal(t, output.Weights().Size(), grads[1].Size())

	mismatched, err := nn.NewLayer(ctx, nn.NewSigmoid(), 5, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, net.Add(mismatched), nn.ErrInvalidConfiguration)
}

func TestActivationByName_PublicNames(t *testing.T) {
	for _, name := range []string{"sigmoid", "tanh", "relu", "linear", "softmax"} {
		a, err := nn.ActivationByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
	}
}
