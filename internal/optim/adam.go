package optim

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/dense/internal/la"
	"github.com/born-ml/dense/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	W = W - lr * m_hat / (sqrt(v_hat) + eps)           // Weight update
//
// Moments are kept in host memory; each step downloads the gradient and the
// weights, updates them on the host and uploads the new weights.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	lr    float32
	beta1 float32
	beta2 float32
	eps   float32
	t     int                     // Timestep for bias correction
	m     map[*nn.Layer][]float32 // First moment estimates
	v     map[*nn.Layer][]float32 // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer, filling unset fields with defaults.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		m:     make(map[*nn.Layer][]float32),
		v:     make(map[*nn.Layer][]float32),
	}
}

// Step performs a single optimization step.
func (a *Adam) Step(layers []*nn.Layer, grads []*la.Matrix) error {
	if err := checkStep(layers, grads); err != nil {
		return err
	}
	a.t++

	biasCorrection1 := 1 - math32.Pow(a.beta1, float32(a.t))
	biasCorrection2 := 1 - math32.Pow(a.beta2, float32(a.t))

	for i, layer := range layers {
		weights := layer.Weights()
		values := weights.Data()
		g := grads[i].Data()

		m, ok := a.m[layer]
		if !ok {
			m = make([]float32, len(values))
			a.m[layer] = m
		}
		v, ok := a.v[layer]
		if !ok {
			v = make([]float32, len(values))
			a.v[layer] = v
		}

		for j := range values {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
			v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
			mHat := m[j] / biasCorrection1
			vHat := v[j] / biasCorrection2
			values[j] -= a.lr * mHat / (math32.Sqrt(vHat) + a.eps)
		}

		next, err := la.FromSlice(weights.Context(), weights.Rows(), weights.Cols(), values)
		if err != nil {
			return err
		}
		if err := layer.SetWeights(next); err != nil {
			next.Release()
			return err
		}
	}
	return nil
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}
