package nn

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/dense/internal/la"
)

// ConfusionTable holds binary classification counts.
type ConfusionTable struct {
	TruePositives  int
	FalseNegatives int
	FalsePositives int
	TrueNegatives  int
}

func ratio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}

// Total returns the number of classified examples.
func (t ConfusionTable) Total() int {
	return t.TruePositives + t.FalseNegatives + t.FalsePositives + t.TrueNegatives
}

// Accuracy returns (tp + tn) / total.
func (t ConfusionTable) Accuracy() float64 {
	return ratio(float64(t.TruePositives+t.TrueNegatives), float64(t.Total()))
}

// ErrorRate returns (fp + fn) / total.
func (t ConfusionTable) ErrorRate() float64 {
	return ratio(float64(t.FalsePositives+t.FalseNegatives), float64(t.Total()))
}

// Precision returns tp / (tp + fp).
func (t ConfusionTable) Precision() float64 {
	return ratio(float64(t.TruePositives), float64(t.TruePositives+t.FalsePositives))
}

// Recall returns tp / (tp + fn).
func (t ConfusionTable) Recall() float64 {
	return ratio(float64(t.TruePositives), float64(t.TruePositives+t.FalseNegatives))
}

// Specificity returns tn / (fp + tn).
func (t ConfusionTable) Specificity() float64 {
	return ratio(float64(t.TrueNegatives), float64(t.FalsePositives+t.TrueNegatives))
}

// FScore returns the F-beta score; beta = 1 gives F1.
func (t ConfusionTable) FScore(beta float64) float64 {
	b2 := beta * beta
	tp := float64(t.TruePositives)
	return ratio((b2+1)*tp, (b2+1)*tp+b2*float64(t.FalseNegatives)+float64(t.FalsePositives))
}

// AUC returns the balanced accuracy 0.5 * (recall + specificity).
func (t ConfusionTable) AUC() float64 {
	return 0.5 * (t.Recall() + t.Specificity())
}

// String formats the headline metrics.
func (t ConfusionTable) String() string {
	return fmt.Sprintf("accuracy=%.4f precision=%.4f recall=%.4f fscore=%.4f",
		t.Accuracy(), t.Precision(), t.Recall(), t.FScore(1))
}

// ResultMeasurements accumulates a multi-class confusion matrix.
// Rows are expected labels, columns are predicted labels.
type ResultMeasurements struct {
	labels *LabelMap
	counts [][]int
}

// NewResultMeasurements creates an empty confusion matrix over labels.
func NewResultMeasurements(labels *LabelMap) *ResultMeasurements {
	counts := make([][]int, labels.Len())
	for i := range counts {
		counts[i] = make([]int, labels.Len())
	}
	return &ResultMeasurements{labels: labels, counts: counts}
}

// Add records expected/predicted label pairs.
func (r *ResultMeasurements) Add(expected, predicted []int) error {
	if len(expected) != len(predicted) {
		return fmt.Errorf("measurements: %w: %d expected, %d predicted",
			la.ErrIncompatibleDimensions, len(expected), len(predicted))
	}
	rows := make([]int, len(expected))
	cols := make([]int, len(predicted))
	for i := range expected {
		e, ok := r.labels.index(expected[i])
		if !ok {
			return fmt.Errorf("%w: expected label %d", ErrUnknownLabel, expected[i])
		}
		p, ok := r.labels.index(predicted[i])
		if !ok {
			return fmt.Errorf("%w: predicted label %d", ErrUnknownLabel, predicted[i])
		}
		rows[i], cols[i] = e, p
	}
	for i := range rows {
		r.counts[rows[i]][cols[i]]++
	}
	return nil
}

// AddMatrices records label columns such as those returned by
// LabelMap.ToLabels.
func (r *ResultMeasurements) AddMatrices(expected, predicted *la.Matrix) error {
	if expected.Cols() != 1 || predicted.Cols() != 1 {
		return fmt.Errorf("measurements: %w: want column vectors, got %s and %s",
			la.ErrIncompatibleDimensions, expected.Size(), predicted.Size())
	}
	return r.Add(toInts(expected.Data()), toInts(predicted.Data()))
}

func toInts(values []float32) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(math.Round(float64(v)))
	}
	return out
}

// ConfusionMatrix returns a copy of the counts.
func (r *ResultMeasurements) ConfusionMatrix() [][]int {
	out := make([][]int, len(r.counts))
	for i, row := range r.counts {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Table returns the one-vs-rest confusion table of label.
func (r *ResultMeasurements) Table(label int) (ConfusionTable, error) {
	k, ok := r.labels.index(label)
	if !ok {
		return ConfusionTable{}, fmt.Errorf("%w: %d", ErrUnknownLabel, label)
	}
	return r.table(k), nil
}

func (r *ResultMeasurements) table(k int) ConfusionTable {
	var t ConfusionTable
	for e, row := range r.counts {
		for p, n := range row {
			switch {
			case e == k && p == k:
				t.TruePositives += n
			case e == k:
				t.FalseNegatives += n
			case p == k:
				t.FalsePositives += n
			default:
				t.TrueNegatives += n
			}
		}
	}
	return t
}

// macro averages metric over the one-vs-rest table of every label.
func (r *ResultMeasurements) macro(metric func(ConfusionTable) float64) float64 {
	if len(r.counts) == 0 {
		return 0
	}
	var total float64
	for k := range r.counts {
		total += metric(r.table(k))
	}
	return total / float64(len(r.counts))
}

// Accuracy returns the fraction of examples on the diagonal.
func (r *ResultMeasurements) Accuracy() float64 {
	var correct, total int
	for e, row := range r.counts {
		for p, n := range row {
			total += n
			if e == p {
				correct += n
			}
		}
	}
	return ratio(float64(correct), float64(total))
}

// AverageAccuracy returns the macro-averaged one-vs-rest accuracy.
func (r *ResultMeasurements) AverageAccuracy() float64 {
	return r.macro(ConfusionTable.Accuracy)
}

// ErrorRate returns the macro-averaged error rate.
func (r *ResultMeasurements) ErrorRate() float64 {
	return r.macro(ConfusionTable.ErrorRate)
}

// Precision returns the macro-averaged precision.
func (r *ResultMeasurements) Precision() float64 {
	return r.macro(ConfusionTable.Precision)
}

// Recall returns the macro-averaged recall.
func (r *ResultMeasurements) Recall() float64 {
	return r.macro(ConfusionTable.Recall)
}

// FScore combines the macro-averaged precision and recall.
func (r *ResultMeasurements) FScore(beta float64) float64 {
	return fscore(r.Precision(), r.Recall(), beta)
}

func (r *ResultMeasurements) micro() (tp, fp, fn float64) {
	for k := range r.counts {
		t := r.table(k)
		tp += float64(t.TruePositives)
		fp += float64(t.FalsePositives)
		fn += float64(t.FalseNegatives)
	}
	return tp, fp, fn
}

// MicroPrecision returns precision over the pooled per-label counts.
func (r *ResultMeasurements) MicroPrecision() float64 {
	tp, fp, _ := r.micro()
	return ratio(tp, tp+fp)
}

// MicroRecall returns recall over the pooled per-label counts.
func (r *ResultMeasurements) MicroRecall() float64 {
	tp, _, fn := r.micro()
	return ratio(tp, tp+fn)
}

// MicroFScore combines the micro precision and recall.
func (r *ResultMeasurements) MicroFScore(beta float64) float64 {
	return fscore(r.MicroPrecision(), r.MicroRecall(), beta)
}

func fscore(p, r, beta float64) float64 {
	b2 := beta * beta
	return ratio((b2+1)*p*r, b2*p+r)
}

// String formats every aggregate metric, one per line.
func (r *ResultMeasurements) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "accuracy:         %.4f\n", r.Accuracy())
	fmt.Fprintf(&sb, "average accuracy: %.4f\n", r.AverageAccuracy())
	fmt.Fprintf(&sb, "error rate:       %.4f\n", r.ErrorRate())
	fmt.Fprintf(&sb, "precision:        %.4f\n", r.Precision())
	fmt.Fprintf(&sb, "recall:           %.4f\n", r.Recall())
	fmt.Fprintf(&sb, "fscore:           %.4f\n", r.FScore(1))
	fmt.Fprintf(&sb, "micro precision:  %.4f\n", r.MicroPrecision())
	fmt.Fprintf(&sb, "micro recall:     %.4f\n", r.MicroRecall())
	fmt.Fprintf(&sb, "micro fscore:     %.4f\n", r.MicroFScore(1))
	return sb.String()
}
