package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/dense/internal/la"
)

// Layer is a fully connected layer.
//
// Performs the transformation: y = act([1 | x] @ Wᵀ)
// where:
//   - x is the input with shape [examples, inputSize]
//   - W is the weight matrix with shape [outputSize, inputSize+1]
//   - column 0 of W holds the bias of each output unit
//   - y is the output with shape [examples, outputSize]
//
// Example:
//
//	ctx := cpu.New()
//	hidden, _ := nn.NewLayer(ctx, nn.NewSigmoid(), 784, 128)
//	output, _ := hidden.Forward(batch) // [batch, 128]
type Layer struct {
	ctx        la.Context
	activation Activation
	weights    *la.Matrix
	inputSize  int
	outputSize int
}

// NewLayer creates a layer with Xavier-initialized weights and biases.
func NewLayer(ctx la.Context, activation Activation, inputSize, outputSize int) (*Layer, error) {
	return NewLayerWithRand(ctx, activation, inputSize, outputSize, nil)
}

// NewLayerWithRand is NewLayer with an explicit random source, for
// reproducible initialization.
func NewLayerWithRand(ctx la.Context, activation Activation, inputSize, outputSize int, rng *rand.Rand) (*Layer, error) {
	if activation == nil {
		return nil, fmt.Errorf("%w: nil activation", ErrInvalidConfiguration)
	}
	if inputSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("%w: layer size %d -> %d", ErrInvalidConfiguration, inputSize, outputSize)
	}

	values := xavier(rng, inputSize, outputSize, outputSize*(inputSize+1))
	weights, err := la.FromSlice(ctx, outputSize, inputSize+1, values)
	if err != nil {
		return nil, err
	}
	return &Layer{
		ctx:        ctx,
		activation: activation,
		weights:    weights,
		inputSize:  inputSize,
		outputSize: outputSize,
	}, nil
}

// NewLayerFromWeights creates a layer around existing weights of shape
// [outputSize, inputSize+1]. The layer takes ownership of weights.
func NewLayerFromWeights(activation Activation, weights *la.Matrix) (*Layer, error) {
	if activation == nil {
		return nil, fmt.Errorf("%w: nil activation", ErrInvalidConfiguration)
	}
	if weights.Rows() < 1 || weights.Cols() < 2 {
		return nil, fmt.Errorf("%w: weights %s leave no room for a bias column", ErrInvalidConfiguration, weights.Size())
	}
	return &Layer{
		ctx:        weights.Context(),
		activation: activation,
		weights:    weights,
		inputSize:  weights.Cols() - 1,
		outputSize: weights.Rows(),
	}, nil
}

// Context returns the context the weights live on.
func (l *Layer) Context() la.Context { return l.ctx }

// Activation returns the layer's activation function.
func (l *Layer) Activation() Activation { return l.activation }

// InputSize returns the number of input units, excluding the bias.
func (l *Layer) InputSize() int { return l.inputSize }

// OutputSize returns the number of output units.
func (l *Layer) OutputSize() int { return l.outputSize }

// Weights returns the live weight matrix, bias in column 0.
// The matrix is owned by the layer and must not be released by the caller.
func (l *Layer) Weights() *la.Matrix { return l.weights }

// SetWeights replaces the weights. The layer takes ownership of weights and
// releases the previous matrix.
func (l *Layer) SetWeights(weights *la.Matrix) error {
	if weights.Context() != l.ctx {
		return la.ErrContextMismatch
	}
	if weights.Size() != l.weights.Size() {
		return fmt.Errorf("set weights: %w: have %s, got %s", la.ErrIncompatibleDimensions, l.weights.Size(), weights.Size())
	}
	if weights != l.weights {
		l.weights.Release()
		l.weights = weights
	}
	return nil
}

// withBias returns [1 | input].
func (l *Layer) withBias(input *la.Matrix) (*la.Matrix, error) {
	ones, err := la.Full(l.ctx, input.Rows(), 1, 1)
	if err != nil {
		return nil, err
	}
	defer ones.Release()
	return ones.Concat(input)
}

// Forward computes act([1 | input] @ Wᵀ).
func (l *Layer) Forward(input *la.Matrix) (*la.Matrix, error) {
	if input.Cols() != l.inputSize {
		return nil, fmt.Errorf("layer forward: %w: input has %d columns, layer expects %d",
			la.ErrIncompatibleDimensions, input.Cols(), l.inputSize)
	}

	var arena la.Arena
	defer arena.Release()

	biased, err := arena.TrackErr(l.withBias(input))
	if err != nil {
		return nil, err
	}
	z, err := arena.TrackErr(biased.MatMul(arena.Track(l.weights.Transpose())))
	if err != nil {
		return nil, err
	}
	return l.activation.Apply(z)
}

// Backward applies the chain rule through the layer.
//
// Given the layer input, the activations Forward produced for it, and the
// error signal for those activations, it returns the weight gradient
// (shaped like Weights) and the error signal for the layer input:
//
//	delta       = act'(activations) ⊙ upstream
//	weightGrad  = deltaᵀ @ [1 | input] / -examples
//	inputSignal = (delta @ W) without the bias column
func (l *Layer) Backward(input, activations, upstream *la.Matrix) (weightGrad, inputSignal *la.Matrix, err error) {
	examples := input.Rows()
	if examples == 0 {
		return nil, nil, fmt.Errorf("layer backward: %w: no examples", la.ErrIncompatibleDimensions)
	}
	if input.Cols() != l.inputSize {
		return nil, nil, fmt.Errorf("layer backward: %w: input has %d columns, layer expects %d",
			la.ErrIncompatibleDimensions, input.Cols(), l.inputSize)
	}
	want := la.Size{Rows: examples, Cols: l.outputSize}
	if activations.Size() != want || upstream.Size() != want {
		return nil, nil, fmt.Errorf("layer backward: %w: activations %s, upstream %s, want %s",
			la.ErrIncompatibleDimensions, activations.Size(), upstream.Size(), want)
	}

	var arena la.Arena
	defer arena.Release()

	derivative, err := arena.TrackErr(l.activation.Derivative(activations))
	if err != nil {
		return nil, nil, err
	}
	delta, err := arena.TrackErr(derivative.Hadamard(upstream))
	if err != nil {
		return nil, nil, err
	}
	biased, err := arena.TrackErr(l.withBias(input))
	if err != nil {
		return nil, nil, err
	}
	product, err := arena.TrackErr(arena.Track(delta.Transpose()).MatMul(biased))
	if err != nil {
		return nil, nil, err
	}
	weightGrad = product.Div(-float32(examples))

	propagated, err := arena.TrackErr(delta.MatMul(l.weights))
	if err != nil {
		weightGrad.Release()
		return nil, nil, err
	}
	inputSignal, err = propagated.ColumnRange(1, propagated.Cols())
	if err != nil {
		weightGrad.Release()
		return nil, nil, err
	}
	return weightGrad, inputSignal, nil
}
