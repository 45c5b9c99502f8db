package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// DefaultSeed seeds NewRand when callers do not pick their own seed.
const DefaultSeed uint64 = 42

// NewRand returns a deterministic generator for weight initialization.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Uniform returns a rows×cols matrix with values drawn from U(-bound, bound).
func Uniform(rng *rand.Rand, rows, cols int, bound float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
	return mat.NewDense(rows, cols, data)
}

// FanIn returns a [out, in] weight matrix drawn from U(-1/√in, 1/√in).
func FanIn(rng *rand.Rand, in, out int) *mat.Dense {
	return Uniform(rng, out, in, 1/math.Sqrt(float64(in)))
}

// Xavier returns a [out, in] weight matrix with Xavier/Glorot uniform values:
// U(-sqrt(6/(in + out)), sqrt(6/(in + out))).
func Xavier(rng *rand.Rand, in, out int) *mat.Dense {
	return Uniform(rng, out, in, math.Sqrt(6.0/float64(in+out)))
}

// Zeros returns a rows×cols zero matrix, used for bias initialization.
func Zeros(rows, cols int) *mat.Dense {
	return mat.NewDense(rows, cols, nil)
}
