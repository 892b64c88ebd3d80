package optim

import (
	"fmt"

	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
)

// maxAveragedBatches bounds the window of the per-epoch cost average.
const maxAveragedBatches = 20

// MinibatchGradientDescent splits the examples into contiguous minibatches
// of batchSize rows (the last one may be smaller) and takes
// batchIterations gradient steps on each before moving to the next.
//
// The cost reported for an epoch is the running average of the last
// minibatch costs, at most 20 of them. The early-stop callback is
// consulted once per epoch.
//
// Example:
//
//	trainer := optim.NewMinibatchGradientDescent(5, 0.3, 10, 1)
//	trainer.SetLogger(log.Default())
//	cost, err := trainer.Train(net, features, targets, nn.NewCrossEntropy())
type MinibatchGradientDescent struct {
	loop
	batchSize       int
	batchIterations int
}

// NewMinibatchGradientDescent creates a minibatch trainer.
func NewMinibatchGradientDescent(epochs int, learningRate float32, batchSize, batchIterations int) *MinibatchGradientDescent {
	return &MinibatchGradientDescent{
		loop:            loop{epochs: epochs, learningRate: learningRate},
		batchSize:       batchSize,
		batchIterations: batchIterations,
	}
}

// BatchSize returns the configured minibatch size.
func (t *MinibatchGradientDescent) BatchSize() int { return t.batchSize }

// BatchIterations returns the number of steps taken per minibatch.
func (t *MinibatchGradientDescent) BatchIterations() int { return t.batchIterations }

// Train minimizes cost and returns the final epoch cost.
func (t *MinibatchGradientDescent) Train(net *nn.Network, features, targets *la.Matrix, cost nn.Cost) (float32, error) {
	return t.TrainRegularized(net, features, targets, cost, nil)
}

// TrainRegularized is Train with a weight penalty; reg may be nil.
func (t *MinibatchGradientDescent) TrainRegularized(net *nn.Network, features, targets *la.Matrix, cost nn.Cost, reg Regularizer) (float32, error) {
	if err := t.validate(net, features, targets); err != nil {
		return 0, err
	}
	if t.batchSize < 1 || t.batchIterations < 1 {
		return 0, fmt.Errorf("%w: batch size %d, batch iterations %d",
			nn.ErrInvalidConfiguration, t.batchSize, t.batchIterations)
	}

	rows := features.Rows()
	batchSize := min(t.batchSize, rows)
	batches := (rows + batchSize - 1) / batchSize
	average := NewRunningAverage(min(maxAveragedBatches, batches))
	opt := t.update()

	for epoch := 0; epoch < t.epochs; epoch++ {
		for b := 0; b < batches; b++ {
			start := b * batchSize
			end := min(start+batchSize, rows)
			c, err := t.trainBatch(net, features, targets, start, end, cost, reg, opt)
			if err != nil {
				return 0, fmt.Errorf("epoch %d batch %d: %w", epoch, b, err)
			}
			average.Add(c)
		}

		current := average.Value()
		t.logf("epoch=%d batches=%d cost=%.6f", epoch, batches, current)
		if t.stop(net, epoch, current) {
			return current, nil
		}
	}
	return average.Value(), nil
}

// trainBatch takes batchIterations steps on rows [start, end) and returns
// the cost of the last one.
func (t *MinibatchGradientDescent) trainBatch(net *nn.Network, features, targets *la.Matrix, start, end int,
	cost nn.Cost, reg Regularizer, opt Optimizer) (float32, error) {
	var arena la.Arena
	defer arena.Release()

	batchFeatures, err := arena.TrackErr(features.RowRange(start, end))
	if err != nil {
		return 0, err
	}
	batchTargets, err := arena.TrackErr(targets.RowRange(start, end))
	if err != nil {
		return 0, err
	}

	var c float32
	for i := 0; i < t.batchIterations; i++ {
		if c, err = step(net, batchFeatures, batchTargets, cost, reg, opt); err != nil {
			return 0, err
		}
	}
	return c, nil
}

var _ Trainer = (*MinibatchGradientDescent)(nil)
