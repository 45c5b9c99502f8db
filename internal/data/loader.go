package data

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// DefaultShuffleSeed seeds the shuffling source when LoaderConfig.Rand is nil.
const DefaultShuffleSeed = 42

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BatchSize int        // Rows per batch; the last batch may be smaller
	Shuffle   bool       // Draw a new permutation on every Reset
	Rand      *rand.Rand // Shuffling source, seeded with DefaultShuffleSeed if nil
}

// Batch is one mini-batch of rows copied out of a Dataset.
type Batch struct {
	X *mat.Dense
	Y *mat.Dense
}

// Size returns the number of rows in the batch.
func (b Batch) Size() int {
	r, _ := b.X.Dims()
	return r
}

// Loader walks a Dataset in mini-batches.
//
//	loader, _ := data.NewLoader(ds, data.LoaderConfig{BatchSize: 64, Shuffle: true})
//	for epoch := 0; epoch < epochs; epoch++ {
//	    for loader.HasNext() {
//	        batch := loader.Next()
//	        ...
//	    }
//	    loader.Reset()
//	}
type Loader struct {
	ds        *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	perm      []int
	counter   int
}

// NewLoader creates a loader positioned at the first batch.
func NewLoader(ds *Dataset, cfg LoaderConfig) (*Loader, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "batch size must be positive, got %d", cfg.BatchSize)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(DefaultShuffleSeed))
	}

	l := &Loader{
		ds:        ds,
		batchSize: cfg.BatchSize,
		shuffle:   cfg.Shuffle,
		rng:       rng,
		perm:      make([]int, ds.Len()),
	}
	l.Reset()
	return l, nil
}

// Len returns the number of samples.
func (l *Loader) Len() int {
	return len(l.perm)
}

// NumBatches returns the number of batches per epoch.
func (l *Loader) NumBatches() int {
	return (len(l.perm) + l.batchSize - 1) / l.batchSize
}

// HasNext reports whether the current epoch has batches left.
func (l *Loader) HasNext() bool {
	return l.counter*l.batchSize < len(l.perm)
}

// Next returns the next batch. It panics when HasNext is false.
func (l *Loader) Next() Batch {
	if !l.HasNext() {
		panic("data: Next called after the last batch")
	}
	start := l.counter * l.batchSize
	end := min(start+l.batchSize, len(l.perm))
	l.counter++

	indices := l.perm[start:end]
	return Batch{
		X: selectRows(l.ds.X, indices),
		Y: selectRows(l.ds.Y, indices),
	}
}

// Reset rewinds to the first batch, reshuffling if enabled.
func (l *Loader) Reset() {
	for i := range l.perm {
		l.perm[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(len(l.perm), func(i, j int) {
			l.perm[i], l.perm[j] = l.perm[j], l.perm[i]
		})
	}
	l.counter = 0
}

func selectRows(m *mat.Dense, indices []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		out.SetRow(i, m.RawRowView(idx))
	}
	return out
}
