// Package dataset reads training data into matrices.
//
// Two text formats are supported:
//   - CSV: one example per line, comma separated values; rows shorter than
//     the widest row are padded with zeros.
//   - libsvm: "labels index:value index:value ... # comment" where labels is
//     a comma separated list and feature indices are 1-based.
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/la"
)

// ReadCSV parses comma separated rows into a matrix bound to ctx.
func ReadCSV(r io.Reader, ctx la.Context) (*la.Matrix, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rows [][]float32
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "couldn't read csv")
		}
		row := make([]float32, len(record))
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				line, _ := reader.FieldPos(i)
				return nil, errors.Wrapf(err, "csv line %d column %d", line, i+1)
			}
			row[i] = float32(v)
		}
		rows = append(rows, row)
	}
	return la.FromRows(ctx, rows)
}

// ReadCSVFile reads the CSV file at path.
func ReadCSVFile(path string, ctx la.Context) (*la.Matrix, error) {
	//nolint:gosec // G304: dataset path is user input
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open dataset %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, ctx)
}

type sparseEntry struct {
	index int
	value float32
}

type sparseRow struct {
	labels   []float32
	features []sparseEntry
}

// ReadLibSVM parses libsvm rows into a labels matrix (one column per label
// position, padded with zeros) and a dense features matrix bound to ctx.
//
// With maxFeatures > 0 the features matrix has exactly maxFeatures columns
// and entries beyond it are dropped; otherwise it is as wide as the largest
// index seen.
func ReadLibSVM(r io.Reader, ctx la.Context, maxFeatures int) (labels, features *la.Matrix, err error) {
	var rows []sparseRow
	labelCols, featureCols := 0, 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		row, err := parseLibSVMRow(fields, maxFeatures)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "libsvm line %d", line)
		}
		labelCols = max(labelCols, len(row.labels))
		for _, e := range row.features {
			featureCols = max(featureCols, e.index+1)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "couldn't read libsvm")
	}
	if maxFeatures > 0 {
		featureCols = maxFeatures
	}

	labelValues := make([]float32, len(rows)*labelCols)
	featureValues := make([]float32, len(rows)*featureCols)
	for m, row := range rows {
		copy(labelValues[m*labelCols:], row.labels)
		for _, e := range row.features {
			featureValues[m*featureCols+e.index] = e.value
		}
	}

	if labels, err = la.FromSlice(ctx, len(rows), labelCols, labelValues); err != nil {
		return nil, nil, err
	}
	if features, err = la.FromSlice(ctx, len(rows), featureCols, featureValues); err != nil {
		labels.Release()
		return nil, nil, err
	}
	return labels, features, nil
}

func parseLibSVMRow(fields []string, maxFeatures int) (sparseRow, error) {
	var row sparseRow
	for _, label := range strings.Split(fields[0], ",") {
		v, err := strconv.ParseFloat(label, 32)
		if err != nil {
			return row, errors.Wrapf(err, "label %q", label)
		}
		row.labels = append(row.labels, float32(v))
	}

	for _, field := range fields[1:] {
		indexText, valueText, ok := strings.Cut(field, ":")
		if !ok {
			return row, errors.Errorf("feature %q is not index:value", field)
		}
		index, err := strconv.Atoi(indexText)
		if err != nil || index < 1 {
			return row, errors.Errorf("feature index %q is not a positive integer", indexText)
		}
		value, err := strconv.ParseFloat(valueText, 32)
		if err != nil {
			return row, errors.Wrapf(err, "feature %d value %q", index, valueText)
		}
		if maxFeatures > 0 && index > maxFeatures {
			continue
		}
		row.features = append(row.features, sparseEntry{index: index - 1, value: float32(value)})
	}
	return row, nil
}

// ReadLibSVMFile reads the libsvm file at path.
func ReadLibSVMFile(path string, ctx la.Context, maxFeatures int) (labels, features *la.Matrix, err error) {
	//nolint:gosec // G304: dataset path is user input
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "couldn't open dataset %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadLibSVM(f, ctx, maxFeatures)
}
