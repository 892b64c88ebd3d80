package optim

import (
	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	W = W - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	W = W - lr * velocity
//
// Velocities live on the layers' context and are keyed by layer.
type SGD struct {
	lr         float32
	momentum   float32
	velocities map[*nn.Layer]*la.Matrix
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.3})
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Layer]*la.Matrix),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step(layers []*nn.Layer, grads []*la.Matrix) error {
	if err := checkStep(layers, grads); err != nil {
		return err
	}
	for i, layer := range layers {
		update, err := s.direction(layer, grads[i])
		if err != nil {
			return err
		}
		if err := descend(layer, update, s.lr); err != nil {
			return err
		}
	}
	return nil
}

// direction returns the matrix to step along: the gradient itself, or the
// updated velocity when momentum is enabled. The result stays owned by s
// or by the caller of Step.
func (s *SGD) direction(layer *nn.Layer, grad *la.Matrix) (*la.Matrix, error) {
	if s.momentum == 0 {
		return grad, nil
	}

	velocity, ok := s.velocities[layer]
	if !ok {
		velocity = grad.Clone()
		s.velocities[layer] = velocity
		return velocity, nil
	}

	decayed := velocity.Scale(s.momentum)
	defer decayed.Release()
	next, err := decayed.Add(grad)
	if err != nil {
		return nil, err
	}
	velocity.Release()
	s.velocities[layer] = next
	return next, nil
}

// descend sets the layer weights to W - lr * update.
func descend(layer *nn.Layer, update *la.Matrix, lr float32) error {
	step := update.Scale(lr)
	defer step.Release()
	next, err := layer.Weights().Sub(step)
	if err != nil {
		return err
	}
	if err := layer.SetWeights(next); err != nil {
		next.Release()
		return err
	}
	return nil
}

// Reset drops the momentum state.
func (s *SGD) Reset() {
	for layer, velocity := range s.velocities {
		velocity.Release()
		delete(s.velocities, layer)
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
