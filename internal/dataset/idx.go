package dataset

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/la"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051 // 0x00000803
	idxLabelsMagic = 2049 // 0x00000801
)

// ReadIDXImages reads an IDX image file (the MNIST distribution format)
// into a matrix with one row per image and one column per pixel, scaled to
// [0, 1]. maxSamples > 0 limits the number of images read.
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(r io.Reader, ctx la.Context, maxSamples int) (*la.Matrix, error) {
	var header struct {
		Magic, Images, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "couldn't read idx image header")
	}
	if header.Magic != idxImagesMagic {
		return nil, errors.Errorf("invalid idx image magic: got %d, want %d", header.Magic, idxImagesMagic)
	}

	count := int(header.Images)
	if maxSamples > 0 {
		count = min(count, maxSamples)
	}
	pixels := int(header.Rows * header.Cols)

	raw := make([]byte, count*pixels)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrapf(err, "couldn't read %d images", count)
	}
	values := make([]float32, len(raw))
	for i, p := range raw {
		values[i] = float32(p) / 255
	}
	return la.FromSlice(ctx, count, pixels, values)
}

// ReadIDXLabels reads an IDX label file into a column of labels.
// maxSamples > 0 limits the number of labels read.
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(r io.Reader, ctx la.Context, maxSamples int) (*la.Matrix, error) {
	var header struct {
		Magic, Labels uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "couldn't read idx label header")
	}
	if header.Magic != idxLabelsMagic {
		return nil, errors.Errorf("invalid idx label magic: got %d, want %d", header.Magic, idxLabelsMagic)
	}

	count := int(header.Labels)
	if maxSamples > 0 {
		count = min(count, maxSamples)
	}
	raw := make([]byte, count)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrapf(err, "couldn't read %d labels", count)
	}
	values := make([]float32, count)
	for i, l := range raw {
		values[i] = float32(l)
	}
	return la.FromSlice(ctx, count, 1, values)
}

// ReadIDXFiles reads a pair of IDX image and label files.
func ReadIDXFiles(imagesPath, labelsPath string, ctx la.Context, maxSamples int) (labels, features *la.Matrix, err error) {
	//nolint:gosec // G304: dataset path is user input
	images, err := os.Open(imagesPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "couldn't open dataset %s", imagesPath)
	}
	defer func() { _ = images.Close() }()

	//nolint:gosec // G304: dataset path is user input
	labelFile, err := os.Open(labelsPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "couldn't open dataset %s", labelsPath)
	}
	defer func() { _ = labelFile.Close() }()

	if features, err = ReadIDXImages(images, ctx, maxSamples); err != nil {
		return nil, nil, err
	}
	if labels, err = ReadIDXLabels(labelFile, ctx, maxSamples); err != nil {
		features.Release()
		return nil, nil, err
	}
	if labels.Rows() != features.Rows() {
		features.Release()
		labels.Release()
		return nil, nil, errors.Wrapf(la.ErrIncompatibleDimensions, "%d images, %d labels", features.Rows(), labels.Rows())
	}
	return labels, features, nil
}
