// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset reads training data into matrices.
//
// Supported formats:
//   - CSV: one row per example, numeric columns, '#' comments
//   - LibSVM: "label[,label...] index:value ..." with 1-based indices
//   - IDX: the big-endian image and label files used by MNIST
//
// Example:
//
//	labels, features, err := dataset.ReadLibSVMFile("mnist.scale", ctx, 780)
//	train, validation, err := dataset.Split(features, labels, 0.9, rand.New(rand.NewSource(1)))
package dataset

import (
	"io"
	"math/rand"

	"github.com/born-ml/dense/internal/dataset"
	"github.com/born-ml/dense/la"
)

// Set is a pair of row-aligned feature and target matrices.
type Set = dataset.Set

// ReadCSV parses numeric CSV rows into a matrix. Short rows are padded
// with zeros.
func ReadCSV(r io.Reader, ctx la.Context) (*la.Matrix, error) {
	return dataset.ReadCSV(r, ctx)
}

// ReadCSVFile is ReadCSV on a file.
func ReadCSVFile(path string, ctx la.Context) (*la.Matrix, error) {
	return dataset.ReadCSVFile(path, ctx)
}

// ReadLibSVM parses LibSVM rows. Features with an index above maxFeatures
// are dropped; maxFeatures 0 sizes the matrix to the largest index seen.
func ReadLibSVM(r io.Reader, ctx la.Context, maxFeatures int) (labels, features *la.Matrix, err error) {
	return dataset.ReadLibSVM(r, ctx, maxFeatures)
}

// ReadLibSVMFile is ReadLibSVM on a file.
func ReadLibSVMFile(path string, ctx la.Context, maxFeatures int) (labels, features *la.Matrix, err error) {
	return dataset.ReadLibSVMFile(path, ctx, maxFeatures)
}

// ReadIDXFiles reads an IDX image file and its label file. Pixels are
// scaled to [0, 1]; maxSamples 0 reads everything.
func ReadIDXFiles(imagesPath, labelsPath string, ctx la.Context, maxSamples int) (labels, features *la.Matrix, err error) {
	return dataset.ReadIDXFiles(imagesPath, labelsPath, ctx, maxSamples)
}

// Split shuffles rows with rng (nil keeps their order) and puts fraction
// of them in the training set.
func Split(features, targets *la.Matrix, fraction float64, rng *rand.Rand) (train, validation Set, err error) {
	return dataset.Split(features, targets, fraction, rng)
}
