// Package config loads the YAML description of a training run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the knobs of a training run.
type Config struct {
	Backend  string   `yaml:"backend"` // "cpu" or "webgpu"
	Device   int      `yaml:"device"`  // accelerator index from `dense devices`
	Seed     int64    `yaml:"seed"`
	Data     Data     `yaml:"data"`
	Network  Network  `yaml:"network"`
	Training Training `yaml:"training"`
	Output   string   `yaml:"output"` // model directory, empty to skip storing
}

// Data locates the examples.
type Data struct {
	Format          string  `yaml:"format"` // "csv", "libsvm" or "idx"
	Features        string  `yaml:"features"`
	Targets         string  `yaml:"targets"`
	MaxFeatures     int     `yaml:"max_features"`
	MaxSamples      int     `yaml:"max_samples"`
	Labels          []int   `yaml:"labels"` // class labels; targets hold one label per row
	TrainFraction   float64 `yaml:"train_fraction"`
	ShuffleExamples bool    `yaml:"shuffle"`
}

// Layer is one fully connected layer.
type Layer struct {
	Size       int    `yaml:"size"`
	Activation string `yaml:"activation"`
}

// Network is the layer stack after the input.
type Network struct {
	Layers []Layer `yaml:"layers"`
}

// Training selects the trainer and its hyperparameters.
type Training struct {
	Trainer         string  `yaml:"trainer"` // "minibatch" or "batch"
	Epochs          int     `yaml:"epochs"`
	LearningRate    float32 `yaml:"learning_rate"`
	BatchSize       int     `yaml:"batch_size"`
	BatchIterations int     `yaml:"batch_iterations"`
	Optimizer       string  `yaml:"optimizer"` // "sgd" or "adam"
	Momentum        float32 `yaml:"momentum"`
	Cost            string  `yaml:"cost"` // "squared_error" or "cross_entropy"
	L2              float32 `yaml:"l2"`
	TargetCost      float32 `yaml:"target_cost"` // 0 disables
	TargetAccuracy  float64 `yaml:"target_accuracy"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Backend      string
	Device       int
	Epochs       int
	LearningRate float64
	BatchSize    int
	Seed         int64
	Output       string
}

// Load reads and validates a Config from YAML.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path is user input
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML into a Config filled with defaults. Unknown keys are
// rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Default returns the settings used for keys a config leaves out.
func Default() *Config {
	return &Config{
		Backend: "cpu",
		Seed:    1,
		Data: Data{
			Format:        "csv",
			TrainFraction: 1,
		},
		Training: Training{
			Trainer:         "minibatch",
			Epochs:          10,
			LearningRate:    0.3,
			BatchSize:       50,
			BatchIterations: 1,
			Optimizer:       "sgd",
			Cost:            "cross_entropy",
		},
	}
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Backend != "" {
		c.Backend = o.Backend
	}
	if o.Device > 0 {
		c.Device = o.Device
	}
	if o.Epochs > 0 {
		c.Training.Epochs = o.Epochs
	}
	if o.LearningRate > 0 {
		c.Training.LearningRate = float32(o.LearningRate)
	}
	if o.BatchSize > 0 {
		c.Training.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Output != "" {
		c.Output = o.Output
	}
}

var (
	backends    = []string{"cpu", "webgpu"}
	formats     = []string{"csv", "libsvm", "idx"}
	trainers    = []string{"minibatch", "batch"}
	optimizers  = []string{"sgd", "adam"}
	costs       = []string{"squared_error", "cross_entropy"}
	activations = []string{"sigmoid", "tanh", "relu", "linear", "softmax"}
)

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v (got %q)", field, allowed, value)
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := oneOf("backend", c.Backend, backends); err != nil {
		return err
	}
	if c.Device < 0 {
		return fmt.Errorf("device must be >= 0 (got %d)", c.Device)
	}
	if err := c.Data.validate(); err != nil {
		return err
	}
	if len(c.Network.Layers) == 0 {
		return errors.New("network.layers must list at least one layer")
	}
	for i, l := range c.Network.Layers {
		if l.Size <= 0 {
			return fmt.Errorf("network.layers[%d].size must be > 0 (got %d)", i, l.Size)
		}
		if err := oneOf(fmt.Sprintf("network.layers[%d].activation", i), l.Activation, activations); err != nil {
			return err
		}
	}
	last := c.Network.Layers[len(c.Network.Layers)-1]
	if n := len(c.Data.Labels); n > 0 && last.Size != n {
		return fmt.Errorf("last layer size %d must match the %d labels", last.Size, n)
	}
	if err := c.Training.validate(); err != nil {
		return err
	}
	// The cross entropy gradient assumes the softmax derivative pairing.
	if c.Training.Cost == "cross_entropy" && last.Activation != "softmax" {
		return fmt.Errorf("training.cost cross_entropy requires a softmax output layer (got %q)", last.Activation)
	}
	return nil
}

func (d *Data) validate() error {
	if err := oneOf("data.format", d.Format, formats); err != nil {
		return err
	}
	if d.Features == "" {
		return errors.New("data.features must be set")
	}
	if d.Format != "libsvm" && d.Targets == "" {
		return fmt.Errorf("data.targets must be set for %s data", d.Format)
	}
	if d.MaxFeatures < 0 || d.MaxSamples < 0 {
		return fmt.Errorf("data.max_features and data.max_samples must be >= 0")
	}
	if d.TrainFraction <= 0 || d.TrainFraction > 1 {
		return fmt.Errorf("data.train_fraction must be in (0, 1] (got %g)", d.TrainFraction)
	}
	return nil
}

func (t *Training) validate() error {
	if err := oneOf("training.trainer", t.Trainer, trainers); err != nil {
		return err
	}
	if err := oneOf("training.optimizer", t.Optimizer, optimizers); err != nil {
		return err
	}
	if err := oneOf("training.cost", t.Cost, costs); err != nil {
		return err
	}
	if t.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be > 0 (got %d)", t.Epochs)
	}
	if t.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be > 0 (got %g)", t.LearningRate)
	}
	if t.BatchSize <= 0 {
		return fmt.Errorf("training.batch_size must be > 0 (got %d)", t.BatchSize)
	}
	if t.BatchIterations <= 0 {
		return fmt.Errorf("training.batch_iterations must be > 0 (got %d)", t.BatchIterations)
	}
	if t.Momentum < 0 || t.Momentum >= 1 {
		return fmt.Errorf("training.momentum must be in [0, 1) (got %g)", t.Momentum)
	}
	if t.L2 < 0 {
		return fmt.Errorf("training.l2 must be >= 0 (got %g)", t.L2)
	}
	return nil
}
