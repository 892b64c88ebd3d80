package nn

import (
	"fmt"

	"github.com/born-ml/dense/internal/la"
)

// LabelMap converts between class labels and one-hot output activations.
// Output unit i stands for Labels()[i].
type LabelMap struct {
	labels []int
}

// NewLabelMap maps output unit i to labels[i].
// Duplicate labels fail with ErrInvalidConfiguration.
func NewLabelMap(labels []int) (*LabelMap, error) {
	seen := make(map[int]struct{}, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			return nil, fmt.Errorf("%w: duplicate label %d", ErrInvalidConfiguration, label)
		}
		seen[label] = struct{}{}
	}
	return &LabelMap{labels: append([]int(nil), labels...)}, nil
}

// NewRangeLabelMap maps output unit i to label i for i in [0, n).
func NewRangeLabelMap(n int) *LabelMap {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}
	return &LabelMap{labels: labels}
}

// Labels returns the labels in output-unit order.
func (m *LabelMap) Labels() []int {
	return append([]int(nil), m.labels...)
}

// Len returns the number of labels.
func (m *LabelMap) Len() int {
	return len(m.labels)
}

// index returns the output unit of label.
func (m *LabelMap) index(label int) (int, bool) {
	for i, l := range m.labels {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// ToActivations converts a column of labels into one-hot rows.
// Unknown labels fail with ErrUnknownLabel.
func (m *LabelMap) ToActivations(labels *la.Matrix) (*la.Matrix, error) {
	if labels.Cols() != 1 {
		return nil, fmt.Errorf("labels: %w: want a column vector, got %s", la.ErrIncompatibleDimensions, labels.Size())
	}

	values := labels.Data()
	onehot := make([]float32, len(values)*len(m.labels))
	for r, v := range values {
		unit, ok := m.index(int(v))
		if !ok || float32(int(v)) != v {
			return nil, fmt.Errorf("%w: row %d contains %g", ErrUnknownLabel, r, v)
		}
		onehot[r*len(m.labels)+unit] = 1
	}
	return la.FromSlice(labels.Context(), len(values), len(m.labels), onehot)
}

// ToLabels converts activations into a column of labels by picking the
// most active unit of each row. Ties go to the earliest unit.
func (m *LabelMap) ToLabels(activations *la.Matrix) (*la.Matrix, error) {
	cols := len(m.labels)
	if cols == 0 {
		return nil, fmt.Errorf("%w: empty label map", ErrInvalidConfiguration)
	}
	if activations.Cols() != cols {
		return nil, fmt.Errorf("labels: %w: %d activation columns for %d labels",
			la.ErrIncompatibleDimensions, activations.Cols(), cols)
	}

	values := activations.Data()
	out := make([]float32, activations.Rows())
	for r := range out {
		row := values[r*cols : (r+1)*cols]
		best, bestValue := 0, row[0]
		for c, v := range row {
			if v > bestValue {
				best, bestValue = c, v
			}
		}
		out[r] = float32(m.labels[best])
	}
	return la.FromSlice(activations.Context(), len(out), 1, out)
}
