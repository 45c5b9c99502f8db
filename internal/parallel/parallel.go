// Package parallel splits index ranges across goroutines.
//
// Optimizers use it to update the rows of large parameter matrices
// concurrently. Callers must make sure f(i) only writes state owned by index
// i; For returns once every call has finished.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on goroutines per call.
	MinChunkSize int  // Minimum indices per goroutine.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential is a Config that never starts goroutines.
func Sequential() Config {
	return Config{}
}

// chunkSize returns the number of indices each goroutine handles, or 0 when
// n should run on the calling goroutine.
func (cfg Config) chunkSize(n int) int {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*max(cfg.MinChunkSize, 1) {
		return 0
	}
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
}

// For executes f(i) for i in [0, n).
// Falls back to sequential execution if parallelism is disabled or n is too
// small to fill two chunks.
func For(n int, cfg Config, f func(i int)) {
	chunk := cfg.chunkSize(n)
	if chunk == 0 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
