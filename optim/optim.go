// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import "github.com/born-ml/dense/internal/optim"

// Trainer fits a network's weights to features/targets pairs.
type Trainer = optim.Trainer

// StopEarly is called after every epoch with the zero-based epoch index
// and the epoch cost. Returning true ends training.
type StopEarly = optim.StopEarly

// Regularizer adds a weight penalty to the cost and the gradient.
type Regularizer = optim.Regularizer

// BatchGradientDescent updates once per epoch over the full data set.
type BatchGradientDescent = optim.BatchGradientDescent

// NewBatchGradientDescent creates a full-batch trainer.
func NewBatchGradientDescent(epochs int, learningRate float32) *BatchGradientDescent {
	return optim.NewBatchGradientDescent(epochs, learningRate)
}

// MinibatchGradientDescent updates over contiguous batches of rows.
type MinibatchGradientDescent = optim.MinibatchGradientDescent

// NewMinibatchGradientDescent creates a minibatch trainer taking
// batchIterations update steps on each batch.
//
// Example:
//
//	trainer := optim.NewMinibatchGradientDescent(10, 0.3, 50, 1)
func NewMinibatchGradientDescent(epochs int, learningRate float32, batchSize, batchIterations int) *MinibatchGradientDescent {
	return optim.NewMinibatchGradientDescent(epochs, learningRate, batchSize, batchIterations)
}

// Optimizer applies gradients to layer weights.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam is the Adam optimizer with bias correction.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// RunningAverage is the mean of the most recent values in a fixed window.
type RunningAverage = optim.RunningAverage

// NewRunningAverage creates an average over the last window values.
func NewRunningAverage(window int) *RunningAverage {
	return optim.NewRunningAverage(window)
}
