package nn

import (
	"fmt"

	"github.com/born-ml/dense/internal/la"
)

// Activation is an element-wise transfer function.
//
// Derivative receives the activation's own outputs y = Apply(z), not the
// pre-activations, so a layer never has to keep z around for backward.
type Activation interface {
	// Name identifies the activation in stored models.
	Name() string

	// Apply computes the activation of the pre-activations z.
	Apply(z *la.Matrix) (*la.Matrix, error)

	// Derivative computes the derivative with respect to z, expressed in
	// terms of the outputs y.
	Derivative(y *la.Matrix) (*la.Matrix, error)
}

// Sigmoid squashes values into (0, 1): σ(z) = 1 / (1 + exp(-z)).
type Sigmoid struct{}

// NewSigmoid creates a sigmoid activation.
func NewSigmoid() Sigmoid { return Sigmoid{} }

// Name returns "sigmoid".
func (Sigmoid) Name() string { return "sigmoid" }

// Apply computes σ(z).
func (Sigmoid) Apply(z *la.Matrix) (*la.Matrix, error) { return z.Sigmoid(), nil }

// Derivative computes y * (1 - y).
func (Sigmoid) Derivative(y *la.Matrix) (*la.Matrix, error) { return y.SigmoidGradient(), nil }

// Tanh is the hyperbolic tangent.
type Tanh struct{}

// NewTanh creates a tanh activation.
func NewTanh() Tanh { return Tanh{} }

// Name returns "tanh".
func (Tanh) Name() string { return "tanh" }

// Apply computes tanh(z).
func (Tanh) Apply(z *la.Matrix) (*la.Matrix, error) { return z.Tanh(), nil }

// Derivative computes 1 - y².
func (Tanh) Derivative(y *la.Matrix) (*la.Matrix, error) { return y.TanhGradient(), nil }

// ReLU is the rectified linear unit max(0, z).
type ReLU struct{}

// NewReLU creates a ReLU activation.
func NewReLU() ReLU { return ReLU{} }

// Name returns "relu".
func (ReLU) Name() string { return "relu" }

// Apply computes max(0, z).
func (ReLU) Apply(z *la.Matrix) (*la.Matrix, error) { return z.ReLU(), nil }

// Derivative is 1 where y > 0 and 0 elsewhere.
func (ReLU) Derivative(y *la.Matrix) (*la.Matrix, error) { return y.ReLUGradient(), nil }

// Linear is the identity activation.
type Linear struct{}

// NewLinear creates a linear activation.
func NewLinear() Linear { return Linear{} }

// Name returns "linear".
func (Linear) Name() string { return "linear" }

// Apply returns a copy of z.
func (Linear) Apply(z *la.Matrix) (*la.Matrix, error) { return z.Clone(), nil }

// Derivative is all ones.
func (Linear) Derivative(y *la.Matrix) (*la.Matrix, error) {
	return la.Full(y.Context(), y.Rows(), y.Cols(), 1)
}

// Softmax normalizes each row into a probability distribution.
//
// Softmax is meant to be paired with CrossEntropy. The combined derivative
// of the two with respect to z is y - t; CrossEntropy.Derivative already
// yields y - t, so Softmax contributes a constant -1 that flips it into the
// targets-minus-predictions convention used by Layer.Backward.
//
// Example:
//
//	layer := nn.NewLayer(ctx, nn.NewSoftmax(), 64, 10)
//	cost := nn.NewCrossEntropy()
type Softmax struct{}

// NewSoftmax creates a softmax activation.
func NewSoftmax() Softmax { return Softmax{} }

// Name returns "softmax".
func (Softmax) Name() string { return "softmax" }

// Apply computes the row-wise softmax of z.
func (Softmax) Apply(z *la.Matrix) (*la.Matrix, error) { return z.Softmax(), nil }

// Derivative is all minus ones.
func (Softmax) Derivative(y *la.Matrix) (*la.Matrix, error) {
	return la.Full(y.Context(), y.Rows(), y.Cols(), -1)
}

// ActivationByName returns the activation registered under name.
func ActivationByName(name string) (Activation, error) {
	switch name {
	case "sigmoid":
		return Sigmoid{}, nil
	case "tanh":
		return Tanh{}, nil
	case "relu":
		return ReLU{}, nil
	case "linear":
		return Linear{}, nil
	case "softmax":
		return Softmax{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown activation %q", ErrInvalidConfiguration, name)
	}
}
