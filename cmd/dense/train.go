package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/backend/webgpu"
	"github.com/born-ml/dense/internal/config"
	"github.com/born-ml/dense/internal/dataset"
	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
	"github.com/born-ml/dense/internal/serialization"
)

// summary describes a finished run.
type summary struct {
	Backend  string
	Epochs   int
	Cost     float32
	Report   *nn.ResultMeasurements // nil for regression runs
	Stored   string
	Canceled bool
}

func (s summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend: %s\nepochs: %d\ncost: %.6f\n", s.Backend, s.Epochs, s.Cost)
	if s.Canceled {
		b.WriteString("training canceled\n")
	}
	if s.Report != nil {
		b.WriteString(s.Report.String())
	}
	if s.Stored != "" {
		fmt.Fprintf(&b, "model stored in %s\n", s.Stored)
	}
	return b.String()
}

// trainer is the subset of the optim trainers run configures.
type trainer interface {
	optim.Trainer
	SetLogger(logger *log.Logger)
	SetOptimizer(opt optim.Optimizer)
}

// openContext creates the execution context the config asks for.
func openContext(cfg *config.Config) (la.Context, func(), error) {
	if cfg.Backend == "cpu" {
		return cpu.New(), func() {}, nil
	}
	devices := webgpu.Devices()
	if cfg.Device >= len(devices) {
		return nil, nil, fmt.Errorf("%w: device %d of %d", la.ErrDeviceUnavailable, cfg.Device, len(devices))
	}
	ctx, err := webgpu.New(devices[cfg.Device])
	if err != nil {
		return nil, nil, err
	}
	return ctx, ctx.Close, nil
}

// loadData reads features and targets. For classification runs targets
// is the label column.
func loadData(cfg *config.Config, ctx la.Context) (features, targets *la.Matrix, err error) {
	d := cfg.Data
	switch d.Format {
	case "libsvm":
		targets, features, err = dataset.ReadLibSVMFile(d.Features, ctx, d.MaxFeatures)
	case "idx":
		targets, features, err = dataset.ReadIDXFiles(d.Features, d.Targets, ctx, d.MaxSamples)
	default:
		if features, err = dataset.ReadCSVFile(d.Features, ctx); err != nil {
			return nil, nil, err
		}
		if targets, err = dataset.ReadCSVFile(d.Targets, ctx); err != nil {
			features.Release()
			return nil, nil, err
		}
	}
	if err != nil {
		return nil, nil, err
	}

	if features, err = truncate(features, d.MaxSamples); err != nil {
		targets.Release()
		return nil, nil, err
	}
	if targets, err = truncate(targets, d.MaxSamples); err != nil {
		features.Release()
		return nil, nil, err
	}
	return features, targets, nil
}

// truncate keeps the first n rows of m, releasing m when it copies.
// n <= 0 keeps every row.
func truncate(m *la.Matrix, n int) (*la.Matrix, error) {
	if n <= 0 || m.Rows() <= n {
		return m, nil
	}
	head, err := m.RowRange(0, n)
	m.Release()
	return head, err
}

func buildNetwork(cfg *config.Config, ctx la.Context, inputs int) (*nn.Network, error) {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // G404: weight init does not need crypto/rand
	net := nn.NewNetwork()
	for i, l := range cfg.Network.Layers {
		activation, err := nn.ActivationByName(l.Activation)
		if err != nil {
			return nil, err
		}
		layer, err := nn.NewLayerWithRand(ctx, activation, inputs, l.Size, rng)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := net.Add(layer); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		inputs = l.Size
	}
	return net, nil
}

func newTrainer(t config.Training) trainer {
	var tr trainer
	if t.Trainer == "batch" {
		tr = optim.NewBatchGradientDescent(t.Epochs, t.LearningRate)
	} else {
		tr = optim.NewMinibatchGradientDescent(t.Epochs, t.LearningRate, t.BatchSize, t.BatchIterations)
	}
	switch {
	case t.Optimizer == "adam":
		tr.SetOptimizer(optim.NewAdam(optim.AdamConfig{LR: t.LearningRate}))
	case t.Momentum > 0:
		tr.SetOptimizer(optim.NewSGD(optim.SGDConfig{LR: t.LearningRate, Momentum: t.Momentum}))
	}
	return tr
}

func newCost(name string) nn.Cost {
	if name == "squared_error" {
		return nn.NewSquaredError()
	}
	return nn.NewCrossEntropy()
}

// measure classifies features with net and compares against the label
// column.
func measure(net *nn.Network, labels *nn.LabelMap, features, expected *la.Matrix) (*nn.ResultMeasurements, error) {
	var arena la.Arena
	defer arena.Release()

	activations, err := arena.TrackErr(net.Forward(features))
	if err != nil {
		return nil, err
	}
	predicted, err := arena.TrackErr(labels.ToLabels(activations))
	if err != nil {
		return nil, err
	}
	report := nn.NewResultMeasurements(labels)
	if err := report.AddMatrices(expected, predicted); err != nil {
		return nil, err
	}
	return report, nil
}

// run trains a network as described by cfg. Canceling ctx stops training
// at the next epoch boundary; the partly trained model is still evaluated
// and stored.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) (summary, error) {
	exec, closeExec, err := openContext(cfg)
	if err != nil {
		return summary{}, err
	}
	defer closeExec()
	logger.Printf("backend %s", exec.Name())

	features, targets, err := loadData(cfg, exec)
	if err != nil {
		return summary{}, fmt.Errorf("load data: %w", err)
	}
	var rng *rand.Rand
	if cfg.Data.ShuffleExamples {
		rng = rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // G404: shuffling does not need crypto/rand
	}
	trainSet, validation, err := dataset.Split(features, targets, cfg.Data.TrainFraction, rng)
	features.Release()
	targets.Release()
	if err != nil {
		return summary{}, fmt.Errorf("split: %w", err)
	}
	defer trainSet.Release()
	defer validation.Release()
	logger.Printf("%d training rows, %d validation rows, %d features",
		trainSet.Features.Rows(), validation.Features.Rows(), trainSet.Features.Cols())

	var labels *nn.LabelMap
	trainTargets := trainSet.Targets
	if len(cfg.Data.Labels) > 0 {
		if labels, err = nn.NewLabelMap(cfg.Data.Labels); err != nil {
			return summary{}, err
		}
		if trainTargets, err = labels.ToActivations(trainSet.Targets); err != nil {
			return summary{}, err
		}
		defer trainTargets.Release()
	}

	net, err := buildNetwork(cfg, exec, trainSet.Features.Cols())
	if err != nil {
		return summary{}, err
	}

	s := summary{Backend: exec.Name()}
	tc := cfg.Training
	tr := newTrainer(tc)
	tr.SetLogger(logger)
	tr.SetStopEarly(func(net *nn.Network, epoch int, cost float32) bool {
		s.Epochs = epoch + 1
		if ctx.Err() != nil {
			s.Canceled = true
			return true
		}
		if tc.TargetCost > 0 && cost <= tc.TargetCost {
			logger.Printf("epoch %d: cost %.6f reached target %.6f", epoch, cost, tc.TargetCost)
			return true
		}
		if labels == nil || tc.TargetAccuracy <= 0 || validation.Features.Rows() == 0 {
			return false
		}
		report, err := measure(net, labels, validation.Features, validation.Targets)
		if err != nil {
			logger.Printf("epoch %d: validation: %v", epoch, err)
			return false
		}
		logger.Printf("epoch %d: validation accuracy %.4f", epoch, report.Accuracy())
		return report.Accuracy() >= tc.TargetAccuracy
	})

	cost := newCost(tc.Cost)
	if tc.L2 > 0 {
		s.Cost, err = tr.TrainRegularized(net, trainSet.Features, trainTargets, cost, nn.NewL2Regularizer(tc.L2))
	} else {
		s.Cost, err = tr.Train(net, trainSet.Features, trainTargets, cost)
	}
	if err != nil {
		return s, err
	}

	if labels != nil {
		eval := validation
		if eval.Features.Rows() == 0 {
			eval = trainSet
		}
		if s.Report, err = measure(net, labels, eval.Features, eval.Targets); err != nil {
			return s, fmt.Errorf("evaluate: %w", err)
		}
	}

	if cfg.Output != "" {
		if err := serialization.Store(cfg.Output, net); err != nil {
			return s, err
		}
		s.Stored = cfg.Output
	}
	return s, nil
}
