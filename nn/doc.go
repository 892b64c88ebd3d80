// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides fully connected feed-forward networks.
//
// # Overview
//
// This package contains:
//   - Layer: a fully connected layer whose weights carry the bias in column 0
//   - Network: an ordered stack of layers with forward and backward passes
//   - Activations: Sigmoid, Tanh, ReLU, Linear, Softmax
//   - Costs: SquaredError, CrossEntropy
//   - L2Regularizer: weight decay that leaves bias weights alone
//   - LabelMap and ResultMeasurements: classification helpers and metrics
//
// # Basic Usage
//
//	ctx := cpu.New()
//	net := nn.NewNetwork()
//	hidden, _ := nn.NewLayer(ctx, nn.NewSigmoid(), 400, 25)
//	output, _ := nn.NewLayer(ctx, nn.NewSoftmax(), 25, 10)
//	_ = net.Add(hidden)
//	_ = net.Add(output)
//
//	predictions, err := net.Forward(features)
//
// # Backpropagation
//
// Network.Backward runs one forward pass and returns the mean cost over
// the rows together with one weight gradient per layer, shaped like the
// layer's weights. The gradients already point downhill, so an update is
//
//	W = W - lr * gradient
//
// which is what the trainers in package optim do.
package nn
