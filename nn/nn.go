// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/la"
)

// Errors reported by layers, networks and label maps.
var (
	ErrInvalidConfiguration = nn.ErrInvalidConfiguration
	ErrUnknownLabel         = nn.ErrUnknownLabel
)

// Network is an ordered stack of layers.
type Network = nn.Network

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return nn.NewNetwork()
}

// Layer is a fully connected layer.
type Layer = nn.Layer

// NewLayer creates a layer with Xavier-initialized weights.
//
// Example:
//
//	layer, err := nn.NewLayer(ctx, nn.NewTanh(), 784, 128)
func NewLayer(ctx la.Context, activation Activation, inputSize, outputSize int) (*Layer, error) {
	return nn.NewLayer(ctx, activation, inputSize, outputSize)
}

// NewLayerWithRand is NewLayer drawing weights from rng, for reproducible
// initialization.
func NewLayerWithRand(ctx la.Context, activation Activation, inputSize, outputSize int, rng *rand.Rand) (*Layer, error) {
	return nn.NewLayerWithRand(ctx, activation, inputSize, outputSize, rng)
}

// NewLayerFromWeights creates a layer around an existing
// (outputs x inputs+1) weight matrix.
func NewLayerFromWeights(activation Activation, weights *la.Matrix) (*Layer, error) {
	return nn.NewLayerFromWeights(activation, weights)
}

// Activations.

// Activation is an element-wise (or row-wise) transfer function.
type Activation = nn.Activation

// Activation implementations.
type (
	Sigmoid = nn.Sigmoid
	Tanh    = nn.Tanh
	ReLU    = nn.ReLU
	Linear  = nn.Linear
	Softmax = nn.Softmax
)

// NewSigmoid returns the logistic activation.
func NewSigmoid() Sigmoid { return nn.NewSigmoid() }

// NewTanh returns the hyperbolic tangent activation.
func NewTanh() Tanh { return nn.NewTanh() }

// NewReLU returns the rectified linear activation.
func NewReLU() ReLU { return nn.NewReLU() }

// NewLinear returns the identity activation.
func NewLinear() Linear { return nn.NewLinear() }

// NewSoftmax returns the row-wise softmax activation.
func NewSoftmax() Softmax { return nn.NewSoftmax() }

// ActivationByName resolves the names used in stored models.
func ActivationByName(name string) (Activation, error) {
	return nn.ActivationByName(name)
}

// Costs.

// Cost measures predictions against targets.
type Cost = nn.Cost

// Cost implementations.
type (
	SquaredError = nn.SquaredError
	CrossEntropy = nn.CrossEntropy
)

// NewSquaredError returns the half squared error cost.
func NewSquaredError() SquaredError { return nn.NewSquaredError() }

// NewCrossEntropy returns the cross-entropy cost, for softmax outputs.
func NewCrossEntropy() CrossEntropy { return nn.NewCrossEntropy() }

// L2Regularizer penalizes large non-bias weights.
type L2Regularizer = nn.L2Regularizer

// NewL2Regularizer creates an L2 penalty with the given decay.
func NewL2Regularizer(weightDecay float32) L2Regularizer {
	return nn.NewL2Regularizer(weightDecay)
}

// Classification.

// LabelMap maps class labels to output units.
type LabelMap = nn.LabelMap

// NewLabelMap creates a map over distinct labels; unit i stands for labels[i].
func NewLabelMap(labels []int) (*LabelMap, error) {
	return nn.NewLabelMap(labels)
}

// NewRangeLabelMap maps labels 0..n-1 to units 0..n-1.
func NewRangeLabelMap(n int) *LabelMap {
	return nn.NewRangeLabelMap(n)
}

// ConfusionTable holds one-vs-rest counts for a single label.
type ConfusionTable = nn.ConfusionTable

// ResultMeasurements is a multi-class confusion matrix with derived metrics.
type ResultMeasurements = nn.ResultMeasurements

// NewResultMeasurements creates an empty confusion matrix over labels.
func NewResultMeasurements(labels *LabelMap) *ResultMeasurements {
	return nn.NewResultMeasurements(labels)
}
