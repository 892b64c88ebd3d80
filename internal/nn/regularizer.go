package nn

import (
	"github.com/born-ml/dense/internal/la"
)

// L2Regularizer penalizes large weights (weight decay).
//
// For a weight matrix W with the bias in column 0:
//
//	penalty  = λ/2 * Σ W[:, 1:]²
//	gradient = [0 | λ * W[:, 1:]]
//
// Biases are not regularized.
type L2Regularizer struct {
	WeightDecay float32 // λ
}

// NewL2Regularizer creates an L2 regularizer with the given weight decay.
func NewL2Regularizer(weightDecay float32) L2Regularizer {
	return L2Regularizer{WeightDecay: weightDecay}
}

// Penalty returns the cost penalty and the gradient penalty for weights.
// The gradient penalty has the shape of weights.
func (r L2Regularizer) Penalty(weights *la.Matrix) (float32, *la.Matrix, error) {
	var arena la.Arena
	defer arena.Release()

	biasless, err := arena.TrackErr(weights.ColumnRange(1, weights.Cols()))
	if err != nil {
		return 0, nil, err
	}
	squared, err := arena.TrackErr(biasless.Hadamard(biasless))
	if err != nil {
		return 0, nil, err
	}
	cost := r.WeightDecay / 2 * squared.Sum()

	zeros, err := arena.TrackErr(la.New(weights.Context(), weights.Rows(), 1))
	if err != nil {
		return 0, nil, err
	}
	gradient, err := zeros.Concat(arena.Track(biasless.Scale(r.WeightDecay)))
	if err != nil {
		return 0, nil, err
	}
	return cost, gradient, nil
}
