package nn

import (
	"math"
	"math/rand"
)

// xavier draws n weights from the Xavier (Glorot) uniform distribution:
//
//	U(-sqrt(6/(fanIn + fanOut)), sqrt(6/(fanIn + fanOut)))
//
// A nil rng uses the shared math/rand source.
func xavier(rng *rand.Rand, fanIn, fanOut, n int) []float32 {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	uniform := rand.Float64 //nolint:gosec // Weight initialization is not security-critical.
	if rng != nil {
		uniform = rng.Float64
	}

	values := make([]float32, n)
	for i := range values {
		values[i] = float32((uniform()*2.0 - 1.0) * bound)
	}
	return values
}
