package nn

import (
	"fmt"

	"github.com/born-ml/dense/internal/la"
)

// Network is an ordered stack of layers.
//
// Each layer's output feeds the next layer's input; Add enforces that the
// sizes line up, so a Network is always well-formed.
//
// Example:
//
//	net := nn.NewNetwork()
//	hidden, _ := nn.NewLayer(ctx, nn.NewSigmoid(), 4, 8)
//	output, _ := nn.NewLayer(ctx, nn.NewSoftmax(), 8, 3)
//	_ = net.Add(hidden)
//	_ = net.Add(output)
//	predictions, _ := net.Forward(features)
type Network struct {
	layers []*Layer
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{}
}

// Add appends a layer.
// It fails with ErrInvalidConfiguration if the layer's input size differs
// from the current output size, or if the layer lives on another context.
func (n *Network) Add(layer *Layer) error {
	if layer == nil {
		return fmt.Errorf("%w: nil layer", ErrInvalidConfiguration)
	}
	if len(n.layers) > 0 {
		last := n.layers[len(n.layers)-1]
		if layer.InputSize() != last.OutputSize() {
			return fmt.Errorf("%w: layer %d has %d inputs, layer %d has %d outputs",
				ErrInvalidConfiguration, len(n.layers), layer.InputSize(), len(n.layers)-1, last.OutputSize())
		}
		if layer.Context() != last.Context() {
			return fmt.Errorf("%w: %w", ErrInvalidConfiguration, la.ErrContextMismatch)
		}
	}
	n.layers = append(n.layers, layer)
	return nil
}

// Size returns the number of layers.
func (n *Network) Size() int {
	return len(n.layers)
}

// Layers returns the layers in evaluation order.
func (n *Network) Layers() []*Layer {
	return append([]*Layer(nil), n.layers...)
}

// Layer returns layer i.
func (n *Network) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(n.layers) {
		return nil, fmt.Errorf("%w: layer %d not in [0, %d)", la.ErrIndexOutOfRange, i, len(n.layers))
	}
	return n.layers[i], nil
}

// Context returns the context of the first layer, or nil for an empty network.
func (n *Network) Context() la.Context {
	if len(n.layers) == 0 {
		return nil
	}
	return n.layers[0].Context()
}

// InputSize returns the input size of the first layer (0 if empty).
func (n *Network) InputSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[0].InputSize()
}

// OutputSize returns the output size of the last layer (0 if empty).
func (n *Network) OutputSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[len(n.layers)-1].OutputSize()
}

// Forward runs inputs through every layer and returns the final activations.
// An empty network returns a copy of inputs.
func (n *Network) Forward(inputs *la.Matrix) (*la.Matrix, error) {
	if len(n.layers) == 0 {
		return inputs.Clone(), nil
	}

	activation := inputs
	for i, layer := range n.layers {
		next, err := layer.Forward(activation)
		if activation != inputs {
			activation.Release()
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		activation = next
	}
	return activation, nil
}

// Backward computes the mean cost over the examples and the weight gradient
// of every layer, in layer order. Weights are not modified.
func (n *Network) Backward(features, targets *la.Matrix, cost Cost) (float32, []*la.Matrix, error) {
	if len(n.layers) == 0 {
		return 0, nil, fmt.Errorf("%w: empty network", ErrInvalidConfiguration)
	}
	if features.Rows() == 0 {
		return 0, nil, fmt.Errorf("backward: %w: no examples", la.ErrIncompatibleDimensions)
	}
	if features.Rows() != targets.Rows() {
		return 0, nil, fmt.Errorf("backward: %w: %d feature rows, %d target rows",
			la.ErrIncompatibleDimensions, features.Rows(), targets.Rows())
	}

	var arena la.Arena
	defer arena.Release()

	// activations[i] is the input of layer i; the last entry is the output.
	activations := make([]*la.Matrix, 0, len(n.layers)+1)
	activations = append(activations, features)
	for i, layer := range n.layers {
		next, err := arena.TrackErr(layer.Forward(activations[i]))
		if err != nil {
			return 0, nil, fmt.Errorf("layer %d: %w", i, err)
		}
		activations = append(activations, next)
	}

	predictions := activations[len(activations)-1]
	costs, err := arena.TrackErr(cost.Cost(targets, predictions))
	if err != nil {
		return 0, nil, err
	}
	total := costs.Sum() / float32(costs.Rows())

	signal, err := arena.TrackErr(cost.Derivative(targets, predictions))
	if err != nil {
		return 0, nil, err
	}

	gradients := make([]*la.Matrix, len(n.layers))
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad, next, err := n.layers[i].Backward(activations[i], activations[i+1], signal)
		if err != nil {
			for _, g := range gradients[i+1:] {
				g.Release()
			}
			return 0, nil, fmt.Errorf("layer %d: %w", i, err)
		}
		gradients[i] = grad
		signal = arena.Track(next)
	}
	return total, gradients, nil
}
