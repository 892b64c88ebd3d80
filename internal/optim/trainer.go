package optim

import (
	"fmt"
	"log"

	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
)

// StopEarly is consulted at every checkpoint of a training run with the
// network, the zero-based checkpoint index and the current cost. Returning
// true ends the run before the next checkpoint starts.
type StopEarly func(net *nn.Network, epoch int, cost float32) bool

// Regularizer adds a weight penalty to the cost and the gradient.
// nn.L2Regularizer implements it.
type Regularizer interface {
	Penalty(weights *la.Matrix) (float32, *la.Matrix, error)
}

// Trainer fits a network's weights to features/targets pairs.
type Trainer interface {
	// Train minimizes cost and returns the final cost.
	Train(net *nn.Network, features, targets *la.Matrix, cost nn.Cost) (float32, error)

	// TrainRegularized is Train with a weight penalty.
	TrainRegularized(net *nn.Network, features, targets *la.Matrix, cost nn.Cost, reg Regularizer) (float32, error)

	// SetStopEarly registers the early-stop callback; nil removes it.
	SetStopEarly(fn StopEarly)
}

// loop holds the settings shared by both trainers.
type loop struct {
	epochs       int
	learningRate float32
	stopEarly    StopEarly
	logger       *log.Logger
	optimizer    Optimizer
}

// SetStopEarly registers the early-stop callback; nil removes it.
func (l *loop) SetStopEarly(fn StopEarly) {
	l.stopEarly = fn
}

// SetLogger enables per-epoch progress lines; nil disables them.
func (l *loop) SetLogger(logger *log.Logger) {
	l.logger = logger
}

// SetOptimizer replaces the default plain SGD update with opt. The
// optimizer keeps its state across Train calls.
func (l *loop) SetOptimizer(opt Optimizer) {
	l.optimizer = opt
}

func (l *loop) logf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Printf(format, args...)
	}
}

// update returns the optimizer for one Train call.
func (l *loop) update() Optimizer {
	if l.optimizer != nil {
		return l.optimizer
	}
	return NewSGD(SGDConfig{LR: l.learningRate})
}

// stop reports whether the callback asks to end training.
func (l *loop) stop(net *nn.Network, epoch int, cost float32) bool {
	return l.stopEarly != nil && l.stopEarly(net, epoch, cost)
}

func (l *loop) validate(net *nn.Network, features, targets *la.Matrix) error {
	if l.epochs < 1 {
		return fmt.Errorf("%w: epoch count %d", nn.ErrInvalidConfiguration, l.epochs)
	}
	if l.learningRate <= 0 {
		return fmt.Errorf("%w: learning rate %g", nn.ErrInvalidConfiguration, l.learningRate)
	}
	if net.Size() == 0 {
		return fmt.Errorf("%w: empty network", nn.ErrInvalidConfiguration)
	}
	if features.Rows() == 0 {
		return fmt.Errorf("train: %w: no examples", la.ErrIncompatibleDimensions)
	}
	if features.Rows() != targets.Rows() {
		return fmt.Errorf("train: %w: %d feature rows, %d target rows",
			la.ErrIncompatibleDimensions, features.Rows(), targets.Rows())
	}
	return nil
}

// step runs one forward/backward pass over features and applies the
// resulting gradients. Every intermediate matrix is released before it
// returns.
func step(net *nn.Network, features, targets *la.Matrix, cost nn.Cost, reg Regularizer, opt Optimizer) (float32, error) {
	var arena la.Arena
	defer arena.Release()

	total, grads, err := net.Backward(features, targets, cost)
	if err != nil {
		return 0, err
	}
	for _, g := range grads {
		arena.Track(g)
	}

	if reg != nil {
		for i, layer := range net.Layers() {
			penalty, gradient, err := reg.Penalty(layer.Weights())
			if err != nil {
				return 0, err
			}
			total += penalty
			regularized, err := arena.TrackErr(grads[i].Add(arena.Track(gradient)))
			if err != nil {
				return 0, err
			}
			grads[i] = regularized
		}
	}

	if err := opt.Step(net.Layers(), grads); err != nil {
		return 0, err
	}
	return total, nil
}

// BatchGradientDescent takes one step over the whole training set per
// epoch and consults the early-stop callback after every step.
type BatchGradientDescent struct {
	loop
}

// NewBatchGradientDescent creates a full-batch trainer.
func NewBatchGradientDescent(epochs int, learningRate float32) *BatchGradientDescent {
	return &BatchGradientDescent{loop{epochs: epochs, learningRate: learningRate}}
}

// Train minimizes cost and returns the cost of the last step.
func (t *BatchGradientDescent) Train(net *nn.Network, features, targets *la.Matrix, cost nn.Cost) (float32, error) {
	return t.TrainRegularized(net, features, targets, cost, nil)
}

// TrainRegularized is Train with a weight penalty; reg may be nil.
func (t *BatchGradientDescent) TrainRegularized(net *nn.Network, features, targets *la.Matrix, cost nn.Cost, reg Regularizer) (float32, error) {
	if err := t.validate(net, features, targets); err != nil {
		return 0, err
	}

	opt := t.update()
	var current float32
	for epoch := 0; epoch < t.epochs; epoch++ {
		c, err := step(net, features, targets, cost, reg, opt)
		if err != nil {
			return 0, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		current = c
		t.logf("epoch=%d cost=%.6f", epoch, current)
		if t.stop(net, epoch, current) {
			break
		}
	}
	return current, nil
}

var _ Trainer = (*BatchGradientDescent)(nil)
