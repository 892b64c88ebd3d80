// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim trains feed-forward networks by gradient descent.
//
// # Overview
//
// This package contains:
//   - BatchGradientDescent: one update per epoch over all rows
//   - MinibatchGradientDescent: updates over contiguous row batches
//   - SGD and Adam: update rules the trainers apply to each layer
//   - RunningAverage: the windowed mean behind minibatch epoch costs
//
// # Basic Usage
//
//	trainer := optim.NewMinibatchGradientDescent(10, 0.3, 50, 1)
//	trainer.SetStopEarly(func(net *nn.Network, epoch int, cost float32) bool {
//	    log.Printf("epoch %d cost %.4f", epoch, cost)
//	    return cost < 0.05
//	})
//	cost, err := trainer.Train(net, features, targets, nn.NewCrossEntropy())
//
// # Optimizers
//
// Trainers apply plain SGD at their learning rate unless SetOptimizer
// supplies another update rule:
//
//	trainer.SetOptimizer(optim.NewAdam(optim.AdamConfig{LR: 0.001}))
//
// Optimizers keep their state (velocities, moments) across Train calls.
package optim
