package serialization

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
)

// Model directory layout.
const (
	ManifestFile = "model.json"
	DataDir      = "data"
	WeightsFile  = "weights.dense"
)

// Manifest is the content of model.json.
type Manifest struct {
	FormatVersion int           `json:"format_version"`
	ModelID       uuid.UUID     `json:"model_id"`
	CreatedAt     time.Time     `json:"created_at"`
	Layers        []LayerRecord `json:"layers"`
}

// LayerRecord describes one layer of a stored network.
type LayerRecord struct {
	Activation string `json:"activation"`
	InputSize  int    `json:"input_size"`
	OutputSize int    `json:"output_size"`
	Weights    string `json:"weights"` // tensor name in the weights file
}

// isModelDirectory reports whether path holds a manifest.
func isModelDirectory(path string) bool {
	info, err := os.Stat(filepath.Join(path, ManifestFile))
	return err == nil && info.Mode().IsRegular()
}

// checkDestination verifies path may receive a model. Only missing paths,
// empty directories and previous model directories may be replaced.
func checkDestination(path string) (exists bool, err error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, errors.Wrapf(err, "can't store model, couldn't stat %s", path)
	case !info.IsDir():
		return false, errors.Wrapf(ErrNotModelDirectory, "can't store model, %s is a file", path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, errors.Wrapf(err, "can't store model, couldn't list %s", path)
	}
	if len(entries) > 0 && !isModelDirectory(path) {
		return false, errors.Wrapf(ErrNotModelDirectory, "can't store model, %s holds other files", path)
	}
	return true, nil
}

// writeWeights writes the weights file of a model.
var writeWeights = func(path string, tensors []Tensor, metadata map[string]string) error {
	writer, err := NewWeightsWriter(path)
	if err != nil {
		return errors.Wrap(err, "couldn't create weights file")
	}
	if err := writer.Write(tensors, metadata); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "couldn't write weights")
	}
	return errors.Wrap(writer.Close(), "couldn't close weights file")
}

// Store persists the architecture and weights of net under path,
// replacing any model previously stored there. The model is written to a
// sibling directory first, so a failed Store leaves the previous model intact.
func Store(path string, net *nn.Network) error {
	layers := net.Layers()
	manifest := Manifest{
		FormatVersion: FormatVersion,
		ModelID:       uuid.New(),
		CreatedAt:     time.Now().UTC(),
		Layers:        make([]LayerRecord, len(layers)),
	}
	tensors := make([]Tensor, len(layers))
	for i, layer := range layers {
		weights := layer.Weights()
		manifest.Layers[i] = LayerRecord{
			Activation: layer.Activation().Name(),
			InputSize:  layer.InputSize(),
			OutputSize: layer.OutputSize(),
			Weights:    weightsName(i),
		}
		tensors[i] = Tensor{Name: weightsName(i), Rows: weights.Rows(), Cols: weights.Cols(), Data: weights.Data()}
	}

	path = filepath.Clean(path)
	exists, err := checkDestination(path)
	if err != nil {
		return err
	}
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return errors.Wrapf(err, "couldn't make directory to store model")
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(path)+"-*")
	if err != nil {
		return errors.Wrapf(err, "couldn't make staging directory in %s", parent)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := os.Chmod(staging, 0o750); err != nil {
		return errors.Wrapf(err, "couldn't set permissions of %s", staging)
	}
	if err := os.Mkdir(filepath.Join(staging, DataDir), 0o750); err != nil {
		return errors.Wrapf(err, "couldn't make directory to store model")
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "couldn't encode manifest")
	}
	if err := os.WriteFile(filepath.Join(staging, ManifestFile), manifestJSON, 0o600); err != nil {
		return errors.Wrapf(err, "couldn't write %s", ManifestFile)
	}
	metadata := map[string]string{"model_id": manifest.ModelID.String()}
	if err := writeWeights(filepath.Join(staging, DataDir, WeightsFile), tensors, metadata); err != nil {
		return err
	}
	return replaceDirectory(staging, path, exists)
}

// replaceDirectory moves staging to path. A previous directory at path is
// moved aside first and removed only once staging is in place.
func replaceDirectory(staging, path string, exists bool) error {
	if !exists {
		return errors.Wrapf(os.Rename(staging, path), "couldn't move model into %s", path)
	}
	previous := staging + ".previous"
	if err := os.Rename(path, previous); err != nil {
		return errors.Wrapf(err, "couldn't move pre-existing %s aside", path)
	}
	if err := os.Rename(staging, path); err != nil {
		if restoreErr := os.Rename(previous, path); restoreErr != nil {
			return errors.Wrapf(err, "couldn't move model into %s, previous model left at %s", path, previous)
		}
		return errors.Wrapf(err, "couldn't move model into %s", path)
	}
	return errors.Wrapf(os.RemoveAll(previous), "couldn't remove pre-existing model at %s", previous)
}

// ReadManifest reads model.json from path.
func ReadManifest(path string) (Manifest, error) {
	var manifest Manifest
	if !isModelDirectory(path) {
		return manifest, errors.Wrapf(ErrNotModelDirectory, "no %s in %s", ManifestFile, path)
	}
	//nolint:gosec // G304: the path is the caller's model directory
	raw, err := os.ReadFile(filepath.Join(path, ManifestFile))
	if err != nil {
		return manifest, errors.Wrapf(err, "couldn't read %s", ManifestFile)
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return manifest, errors.Wrapf(err, "couldn't parse %s", ManifestFile)
	}
	if manifest.FormatVersion != FormatVersion {
		return manifest, errors.Wrapf(ErrUnsupportedVersion, "manifest version %d", manifest.FormatVersion)
	}
	return manifest, nil
}

// Load appends the layers stored under path to net, with weights bound to
// ctx. net is left unchanged on error.
func Load(path string, net *nn.Network, ctx la.Context) error {
	manifest, err := ReadManifest(path)
	if err != nil {
		return err
	}
	_, tensors, err := ReadFile(filepath.Join(path, DataDir, WeightsFile))
	if err != nil {
		return errors.Wrapf(err, "couldn't read weights of %s", path)
	}
	byName := make(map[string]Tensor, len(tensors))
	for _, t := range tensors {
		byName[t.Name] = t
	}

	layers := make([]*nn.Layer, 0, len(manifest.Layers))
	release := func() {
		for _, l := range layers {
			l.Weights().Release()
		}
	}
	for i, record := range manifest.Layers {
		activation, err := nn.ActivationByName(record.Activation)
		if err != nil {
			release()
			return errors.Wrapf(ErrUnknownActivation, "layer %d: %q", i, record.Activation)
		}
		t, ok := byName[record.Weights]
		if !ok {
			release()
			return errors.Wrapf(ErrMissingTensor, "layer %d: %s", i, record.Weights)
		}
		if t.Rows != record.OutputSize || t.Cols != record.InputSize+1 {
			release()
			return errors.Wrapf(la.ErrIncompatibleDimensions, "layer %d: weights [%d %d] for %d -> %d",
				i, t.Rows, t.Cols, record.InputSize, record.OutputSize)
		}
		weights, err := la.FromSlice(ctx, t.Rows, t.Cols, t.Data)
		if err != nil {
			release()
			return errors.Wrapf(err, "layer %d", i)
		}
		layer, err := nn.NewLayerFromWeights(activation, weights)
		if err != nil {
			weights.Release()
			release()
			return errors.Wrapf(err, "layer %d", i)
		}
		layers = append(layers, layer)
	}

	// Validate the whole stack against net before touching it.
	candidate := nn.NewNetwork()
	for _, l := range net.Layers() {
		_ = candidate.Add(l)
	}
	for i, l := range layers {
		if err := candidate.Add(l); err != nil {
			release()
			return errors.Wrapf(err, "layer %d", i)
		}
	}
	for _, l := range layers {
		if err := net.Add(l); err != nil {
			return errors.Wrap(err, "appending loaded layer")
		}
	}
	return nil
}
