// Package optim implements the training loop for feed-forward networks.
//
// This package provides:
//   - Optimizer interface: applies weight gradients to layers
//   - SGD: gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//   - Trainer interface: BatchGradientDescent and MinibatchGradientDescent
//   - RunningAverage: windowed mean of recent minibatch costs
//
// Gradients come from nn.Network.Backward and follow its sign convention,
// so every optimizer descends with W = W - lr * update.
//
// Example usage:
//
//	trainer := optim.NewMinibatchGradientDescent(50, 0.3, 64, 1)
//	trainer.SetStopEarly(func(net *nn.Network, epoch int, cost float32) bool {
//	    return cost < 0.01
//	})
//	finalCost, err := trainer.Train(net, features, targets, nn.NewCrossEntropy())
package optim

import (
	"fmt"

	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
)

// Optimizer updates layer weights from computed gradients.
//
// All optimizers must implement:
//   - Step: apply one update to every layer
//   - GetLR: current learning rate (for monitoring/scheduling)
//   - SetLR: change the learning rate
type Optimizer interface {
	// Step applies grads[i] to layers[i] for every layer.
	//
	// Example:
	//   cost, grads, _ := net.Backward(features, targets, costFn)
	//   _ = optimizer.Step(net.Layers(), grads)
	Step(layers []*nn.Layer, grads []*la.Matrix) error

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate.
	SetLR(lr float32)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// checkStep validates that every layer has a gradient of its own shape.
func checkStep(layers []*nn.Layer, grads []*la.Matrix) error {
	if len(layers) != len(grads) {
		return fmt.Errorf("optimizer step: %w: %d layers, %d gradients",
			la.ErrIncompatibleDimensions, len(layers), len(grads))
	}
	for i, layer := range layers {
		if grads[i].Size() != layer.Weights().Size() {
			return fmt.Errorf("optimizer step: %w: layer %d weights %s, gradient %s",
				la.ErrIncompatibleDimensions, i, layer.Weights().Size(), grads[i].Size())
		}
	}
	return nil
}
