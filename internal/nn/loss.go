package nn

import (
	"fmt"

	"github.com/born-ml/dense/internal/la"
)

// Cost measures how far predictions are from targets.
//
// Both methods take same-shaped (examples x outputs) matrices.
type Cost interface {
	// Cost returns one cost per example as an (examples x 1) column.
	Cost(targets, predictions *la.Matrix) (*la.Matrix, error)

	// Derivative returns the error signal fed into the output layer's
	// backward pass, shaped like predictions.
	Derivative(targets, predictions *la.Matrix) (*la.Matrix, error)
}

func checkCostShapes(name string, targets, predictions *la.Matrix) error {
	if targets.Size() != predictions.Size() {
		return fmt.Errorf("%s: %w: targets %s, predictions %s",
			name, la.ErrIncompatibleDimensions, targets.Size(), predictions.Size())
	}
	return nil
}

// SquaredError is half the squared Euclidean distance per example:
//
//	cost = Σ (t - y)² / 2
//
// Its derivative is t - y.
type SquaredError struct{}

// NewSquaredError creates a squared error cost.
func NewSquaredError() SquaredError { return SquaredError{} }

// Cost computes Σ (t - y)² / 2 for each row.
func (SquaredError) Cost(targets, predictions *la.Matrix) (*la.Matrix, error) {
	if err := checkCostShapes("squared error", targets, predictions); err != nil {
		return nil, err
	}
	diff, err := targets.Sub(predictions)
	if err != nil {
		return nil, err
	}
	defer diff.Release()

	squared, err := diff.Hadamard(diff)
	if err != nil {
		return nil, err
	}
	defer squared.Release()

	sums := squared.SumColumns()
	defer sums.Release()
	return sums.Div(2), nil
}

// Derivative computes t - y.
func (SquaredError) Derivative(targets, predictions *la.Matrix) (*la.Matrix, error) {
	if err := checkCostShapes("squared error", targets, predictions); err != nil {
		return nil, err
	}
	return targets.Sub(predictions)
}

// CrossEntropy is the categorical cross entropy per example:
//
//	cost = -Σ t * log(y)
//
// Its derivative is y - t, which already includes the softmax Jacobian;
// pair it with Softmax.
type CrossEntropy struct{}

// NewCrossEntropy creates a cross entropy cost.
func NewCrossEntropy() CrossEntropy { return CrossEntropy{} }

// Cost computes -Σ t * log(y) for each row.
func (CrossEntropy) Cost(targets, predictions *la.Matrix) (*la.Matrix, error) {
	if err := checkCostShapes("cross entropy", targets, predictions); err != nil {
		return nil, err
	}
	logs := predictions.Log()
	defer logs.Release()

	weighted, err := targets.Hadamard(logs)
	if err != nil {
		return nil, err
	}
	defer weighted.Release()

	sums := weighted.SumColumns()
	defer sums.Release()
	return sums.Scale(-1), nil
}

// Derivative computes y - t.
func (CrossEntropy) Derivative(targets, predictions *la.Matrix) (*la.Matrix, error) {
	if err := checkCostShapes("cross entropy", targets, predictions); err != nil {
		return nil, err
	}
	return predictions.Sub(targets)
}
