// Package nn implements feed-forward neural networks on top of internal/la.
//
// This package provides the building blocks for a fully connected network:
//   - Activation: element-wise transfer functions (sigmoid, tanh, softmax, linear, ReLU)
//   - Cost: per-example error measures (squared error, cross entropy)
//   - Layer: a weight matrix with a folded-in bias column and an activation
//   - Network: a shape-validated stack of layers with forward and backward passes
//   - L2Regularizer, LabelMap, ConfusionTable, ResultMeasurements: training helpers
//
// Gradients follow one sign convention throughout: a cost derivative points
// from predictions towards targets (for squared error, targets - predictions),
// and Layer.Backward turns it into a weight gradient that is subtracted from
// the weights. Trainers in internal/optim apply W -= lr * gradient.
package nn

import "errors"

// ErrInvalidConfiguration is returned when layers cannot be composed.
var ErrInvalidConfiguration = errors.New("invalid network configuration")

// ErrUnknownLabel is returned by LabelMap for labels it does not map.
var ErrUnknownLabel = errors.New("unknown label")
