package optim_test

import (
	"bytes"
	"log"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dense/internal/backend/cpu"
	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
)

func singleLayer(t *testing.T, ctx la.Context, weights ...float32) *nn.Layer {
	t.Helper()
	w, err := la.FromSlice(ctx, 1, len(weights), weights)
	require.NoError(t, err)
	layer, err := nn.NewLayerFromWeights(nn.NewLinear(), w)
	require.NoError(t, err)
	return layer
}

func gradient(t *testing.T, ctx la.Context, values ...float32) *la.Matrix {
	t.Helper()
	g, err := la.FromSlice(ctx, 1, len(values), values)
	require.NoError(t, err)
	return g
}

func TestRunningAverage(t *testing.T) {
	avg := optim.NewRunningAverage(3)
	assert.Zero(t, avg.Value())

	avg.Add(1)
	avg.Add(2)
	assert.InDelta(t, 1.5, avg.Value(), 1e-6)
	assert.Equal(t, 2, avg.Len())

	avg.Add(3)
	avg.Add(4)
	assert.InDelta(t, 3.0, avg.Value(), 1e-6)
	assert.Equal(t, 3, avg.Len())

	single := optim.NewRunningAverage(0)
	single.Add(5)
	single.Add(7)
	assert.InDelta(t, 7.0, single.Value(), 1e-6)
}

func TestSGD_SimpleUpdate(t *testing.T) {
	ctx := cpu.New()
	layer := singleLayer(t, ctx, 1, 2, 3)
	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	require.NoError(t, sgd.Step([]*nn.Layer{layer}, []*la.Matrix{gradient(t, ctx, 1, 1, 1)}))

	// W = W - lr * g
	assert.InDeltaSlice(t, []float32{0.9, 1.9, 2.9}, layer.Weights().Data(), 1e-6)
	assert.InDelta(t, 0.1, sgd.GetLR(), 1e-9)
}

func TestSGD_WithMomentum(t *testing.T) {
	ctx := cpu.New()
	layer := singleLayer(t, ctx, 1)
	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	grads := []*la.Matrix{gradient(t, ctx, 1)}

	// v1 = 1, W = 1 - 0.1 = 0.9
	require.NoError(t, sgd.Step([]*nn.Layer{layer}, grads))
	assert.InDelta(t, 0.9, layer.Weights().Data()[0], 1e-6)

	// v2 = 0.9 + 1 = 1.9, W = 0.9 - 0.19 = 0.71
	require.NoError(t, sgd.Step([]*nn.Layer{layer}, grads))
	assert.InDelta(t, 0.71, layer.Weights().Data()[0], 1e-6)

	sgd.Reset()
	require.NoError(t, sgd.Step([]*nn.Layer{layer}, grads))
	assert.InDelta(t, 0.61, layer.Weights().Data()[0], 1e-6)
}

func TestSGD_StepShapeMismatch(t *testing.T) {
	ctx := cpu.New()
	layer := singleLayer(t, ctx, 1, 2)
	sgd := optim.NewSGD(optim.SGDConfig{})
	assert.InDelta(t, 0.01, sgd.GetLR(), 1e-9)

	err := sgd.Step([]*nn.Layer{layer}, []*la.Matrix{gradient(t, ctx, 1, 2, 3)})
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
	err = sgd.Step([]*nn.Layer{layer}, nil)
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
	assert.Equal(t, []float32{1, 2}, layer.Weights().Data())
}

func TestAdam_FirstStepMovesByLearningRate(t *testing.T) {
	ctx := cpu.New()
	layer := singleLayer(t, ctx, 1, 2, 3)
	adam := optim.NewAdam(optim.AdamConfig{LR: 0.1})

	require.NoError(t, adam.Step([]*nn.Layer{layer}, []*la.Matrix{gradient(t, ctx, 1, -1, 0)}))

	// After bias correction the first update is lr * sign(g).
	assert.InDeltaSlice(t, []float32{0.9, 2.1, 3}, layer.Weights().Data(), 1e-5)
	assert.Equal(t, 1, adam.GetTimestep())

	adam.SetLR(0.5)
	assert.InDelta(t, 0.5, adam.GetLR(), 1e-9)
}

// classifier mirrors a digit classifier: 400 inputs, 25 hidden sigmoid
// units, 10 softmax outputs.
func classifier(t *testing.T, ctx la.Context) (*nn.Network, *la.Matrix, *la.Matrix) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	net := nn.NewNetwork()
	hidden, err := nn.NewLayerWithRand(ctx, nn.NewSigmoid(), 400, 25, rng)
	require.NoError(t, err)
	output, err := nn.NewLayerWithRand(ctx, nn.NewSoftmax(), 25, 10, rng)
	require.NoError(t, err)
	require.NoError(t, net.Add(hidden))
	require.NoError(t, net.Add(output))

	features, err := la.Full(ctx, 100, 400, 42)
	require.NoError(t, err)
	targets := make([]float32, 100*10)
	for row := 0; row < 100; row++ {
		targets[row*10] = 1
	}
	labels, err := la.FromSlice(ctx, 100, 10, targets)
	require.NoError(t, err)
	return net, features, labels
}

type trainerCase struct {
	name string
	new  func() optim.Trainer
}

func trainers() []trainerCase {
	return []trainerCase{
		{"minibatch", func() optim.Trainer { return optim.NewMinibatchGradientDescent(5, 0.3, 10, 1) }},
		{"batch", func() optim.Trainer { return optim.NewBatchGradientDescent(5, 0.3) }},
	}
}

func TestTrainer_Train(t *testing.T) {
	for _, tc := range trainers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := cpu.New()
			net, features, targets := classifier(t, ctx)

			cost, err := tc.new().Train(net, features, targets, nn.NewCrossEntropy())
			require.NoError(t, err)
			assert.Greater(t, cost, float32(0))
		})
	}
}

func TestTrainer_TrainRegularized(t *testing.T) {
	for _, tc := range trainers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := cpu.New()
			net, features, targets := classifier(t, ctx)

			cost, err := tc.new().TrainRegularized(net, features, targets, nn.NewCrossEntropy(), nn.NewL2Regularizer(0.5))
			require.NoError(t, err)
			assert.Greater(t, cost, float32(0))
		})
	}
}

func TestTrainer_CallsStopEarlyOncePerEpoch(t *testing.T) {
	for _, tc := range trainers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := cpu.New()
			net, features, targets := classifier(t, ctx)

			var epochs []int
			trainer := tc.new()
			trainer.SetStopEarly(func(got *nn.Network, epoch int, cost float32) bool {
				assert.Same(t, net, got)
				assert.Greater(t, cost, float32(0))
				epochs = append(epochs, epoch)
				return false
			})

			_, err := trainer.Train(net, features, targets, nn.NewCrossEntropy())
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2, 3, 4}, epochs)
		})
	}
}

func TestTrainer_StopsEarly(t *testing.T) {
	for _, tc := range trainers() {
		for _, stopAt := range []int{1, 3} {
			t.Run(tc.name, func(t *testing.T) {
				ctx := cpu.New()
				net, features, targets := classifier(t, ctx)

				calls := 0
				trainer := tc.new()
				trainer.SetStopEarly(func(*nn.Network, int, float32) bool {
					calls++
					return calls == stopAt
				})

				cost, err := trainer.Train(net, features, targets, nn.NewCrossEntropy())
				require.NoError(t, err)
				assert.Greater(t, cost, float32(0))
				assert.Equal(t, stopAt, calls)
			})
		}
	}
}

func TestMinibatchGradientDescent_FitsLinearFunction(t *testing.T) {
	ctx := cpu.New()
	layer, err := nn.NewLayerWithRand(ctx, nn.NewLinear(), 1, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	net := nn.NewNetwork()
	require.NoError(t, net.Add(layer))

	// y = 2x + 1; five rows in batches of two leave a final batch of one.
	features, err := la.FromSlice(ctx, 5, 1, []float32{0, 0.25, 0.5, 0.75, 1})
	require.NoError(t, err)
	targets, err := la.FromSlice(ctx, 5, 1, []float32{1, 1.5, 2, 2.5, 3})
	require.NoError(t, err)

	var costs []float32
	trainer := optim.NewMinibatchGradientDescent(300, 0.5, 2, 1)
	trainer.SetStopEarly(func(_ *nn.Network, _ int, cost float32) bool {
		costs = append(costs, cost)
		return false
	})

	final, err := trainer.Train(net, features, targets, nn.NewSquaredError())
	require.NoError(t, err)
	require.Len(t, costs, 300)
	assert.Less(t, final, costs[0])
	assert.Less(t, final, float32(1e-4))
	assert.InDeltaSlice(t, []float32{1, 2}, layer.Weights().Data(), 0.05)
}

func TestMinibatchGradientDescent_WithAdam(t *testing.T) {
	ctx := cpu.New()
	layer, err := nn.NewLayerWithRand(ctx, nn.NewLinear(), 1, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	net := nn.NewNetwork()
	require.NoError(t, net.Add(layer))

	features, err := la.FromSlice(ctx, 4, 1, []float32{0, 1, 2, 3})
	require.NoError(t, err)
	targets, err := la.FromSlice(ctx, 4, 1, []float32{-1, 0, 1, 2})
	require.NoError(t, err)

	trainer := optim.NewMinibatchGradientDescent(500, 0.05, 4, 1)
	trainer.SetOptimizer(optim.NewAdam(optim.AdamConfig{LR: 0.05}))

	final, err := trainer.Train(net, features, targets, nn.NewSquaredError())
	require.NoError(t, err)
	assert.Less(t, final, float32(1e-2))
}

func TestTrainer_Logger(t *testing.T) {
	ctx := cpu.New()
	net, features, targets := classifier(t, ctx)

	var buf bytes.Buffer
	trainer := optim.NewMinibatchGradientDescent(2, 0.3, 50, 1)
	trainer.SetLogger(log.New(&buf, "", 0))

	_, err := trainer.Train(net, features, targets, nn.NewCrossEntropy())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "epoch=0 batches=2 cost=")
	assert.Contains(t, buf.String(), "epoch=1 batches=2 cost=")
}

func TestTrainer_InvalidConfiguration(t *testing.T) {
	ctx := cpu.New()
	net, features, targets := classifier(t, ctx)
	cost := nn.NewCrossEntropy()

	for name, trainer := range map[string]optim.Trainer{
		"no epochs":        optim.NewMinibatchGradientDescent(0, 0.3, 10, 1),
		"no learning rate": optim.NewBatchGradientDescent(5, 0),
		"no batch size":    optim.NewMinibatchGradientDescent(5, 0.3, 0, 1),
		"no iterations":    optim.NewMinibatchGradientDescent(5, 0.3, 10, 0),
	} {
		_, err := trainer.Train(net, features, targets, cost)
		assert.ErrorIs(t, err, nn.ErrInvalidConfiguration, name)
	}

	_, err := optim.NewBatchGradientDescent(5, 0.3).Train(nn.NewNetwork(), features, targets, cost)
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)

	short, err := targets.RowRange(0, 10)
	require.NoError(t, err)
	_, err = optim.NewBatchGradientDescent(5, 0.3).Train(net, features, short, cost)
	assert.ErrorIs(t, err, la.ErrIncompatibleDimensions)
}
