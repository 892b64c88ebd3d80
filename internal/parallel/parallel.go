// Package parallel splits host loops across worker goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how a loop is split.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on worker goroutines.
	MinChunkSize int  // Minimum iterations per worker.
}

// DefaultConfig returns a config sized to the CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a config that never spawns workers.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// Chunks calls f(start, end) over disjoint half-open ranges covering [0, n).
// It returns once every range has been processed.
func Chunks(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For calls f(i) for every i in [0, n).
func For(n int, f func(i int), cfg Config) {
	Chunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// Rows calls f(r) for every row of a rows x cols matrix. The chunk size is
// scaled so that each worker receives at least MinChunkSize elements.
func Rows(rows, cols int, f func(r int), cfg Config) {
	if cols > 1 {
		cfg.MinChunkSize = max(1, cfg.MinChunkSize/cols)
	}
	For(rows, f, cfg)
}
