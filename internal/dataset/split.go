package dataset

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/la"
)

// Set is a pair of row-aligned feature and target matrices.
type Set struct {
	Features *la.Matrix
	Targets  *la.Matrix
}

// Release returns both matrices to their context.
func (s Set) Release() {
	s.Features.Release()
	s.Targets.Release()
}

// Split shuffles the rows of features and targets together and divides
// them into a training set holding fraction of the rows and a validation
// set with the rest. A nil rng keeps the original row order.
func Split(features, targets *la.Matrix, fraction float64, rng *rand.Rand) (train, validation Set, err error) {
	rows := features.Rows()
	if targets.Rows() != rows {
		return train, validation, errors.Wrapf(la.ErrIncompatibleDimensions, "%d feature rows, %d target rows", rows, targets.Rows())
	}
	if fraction < 0 || fraction > 1 {
		return train, validation, errors.Errorf("split fraction %g not in [0, 1]", fraction)
	}

	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(rows, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	cut := int(fraction * float64(rows))

	trainFeatures, valFeatures, err := gather(features, order, cut)
	if err != nil {
		return train, validation, err
	}
	trainTargets, valTargets, err := gather(targets, order, cut)
	if err != nil {
		trainFeatures.Release()
		valFeatures.Release()
		return train, validation, err
	}
	return Set{trainFeatures, trainTargets}, Set{valFeatures, valTargets}, nil
}

// gather copies the rows of m in order, split at cut.
func gather(m *la.Matrix, order []int, cut int) (head, tail *la.Matrix, err error) {
	cols := m.Cols()
	src := m.Data()
	dst := make([]float32, len(src))
	for i, r := range order {
		copy(dst[i*cols:(i+1)*cols], src[r*cols:(r+1)*cols])
	}
	if head, err = la.FromSlice(m.Context(), cut, cols, dst[:cut*cols]); err != nil {
		return nil, nil, err
	}
	if tail, err = la.FromSlice(m.Context(), len(order)-cut, cols, dst[cut*cols:]); err != nil {
		head.Release()
		return nil, nil, err
	}
	return head, tail, nil
}
