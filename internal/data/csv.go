// Package data loads tabular regression datasets and serves them in
// mini-batches.
//
// A Dataset is a pair of row-aligned matrices: features X [n, features] and
// labels Y [n, 1]. LoadCSVFile reads one from a CSV file; a Loader walks it in
// (optionally shuffled) batches ready to wrap as graph constants.
package data

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Common errors.
var (
	ErrInvalidConfig = errors.New("data: invalid configuration")
	ErrMalformedCSV  = errors.New("data: malformed csv")
	ErrEmptyDataset  = errors.New("data: empty dataset")
)

// Dataset holds row-aligned features and labels.
type Dataset struct {
	X *mat.Dense // [n, features]
	Y *mat.Dense // [n, 1]
}

// NewDataset pairs x and y. Both must have the same number of rows and y a
// single column.
func NewDataset(x, y *mat.Dense) (*Dataset, error) {
	if x == nil || y == nil || x.IsEmpty() || y.IsEmpty() {
		return nil, ErrEmptyDataset
	}
	xr, _ := x.Dims()
	yr, yc := y.Dims()
	if xr != yr || yc != 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "features have %d rows, labels are %dx%d", xr, yr, yc)
	}
	return &Dataset{X: x, Y: y}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	r, _ := d.X.Dims()
	return r
}

// Features returns the number of feature columns.
func (d *Dataset) Features() int {
	_, c := d.X.Dims()
	return c
}

// Split splits the dataset into train and validation sets. The validation
// set is the trailing validationRatio fraction of the rows; both halves share
// storage with d.
func (d *Dataset) Split(validationRatio float64) (train, validation *Dataset, err error) {
	if validationRatio <= 0 || validationRatio >= 1 {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "validation ratio %g not in (0, 1)", validationRatio)
	}
	n := d.Len()
	splitIdx := int(float64(n) * (1 - validationRatio))
	if splitIdx == 0 || splitIdx == n {
		return nil, nil, errors.Wrapf(ErrEmptyDataset, "%d samples cannot be split by %g", n, validationRatio)
	}

	cols := d.Features()
	train = &Dataset{
		X: d.X.Slice(0, splitIdx, 0, cols).(*mat.Dense),
		Y: d.Y.Slice(0, splitIdx, 0, 1).(*mat.Dense),
	}
	validation = &Dataset{
		X: d.X.Slice(splitIdx, n, 0, cols).(*mat.Dense),
		Y: d.Y.Slice(splitIdx, n, 0, 1).(*mat.Dense),
	}
	return train, validation, nil
}

// CSVConfig describes the layout of a CSV dataset.
type CSVConfig struct {
	Comma       rune  // Field delimiter, ',' if zero
	LabelColumn int   // Label column index; negative counts from the end (-1 is last)
	SkipColumns []int // Columns that are neither feature nor label (e.g. a row index)
	Header      bool  // First record is a header and is ignored
}

// DefaultCSVConfig matches the wine-quality layout: a header row, a leading
// index column, features, then the label in the last column.
func DefaultCSVConfig() CSVConfig {
	return CSVConfig{
		Comma:       ',',
		LabelColumn: -1,
		SkipColumns: []int{0},
		Header:      true,
	}
}

// LoadCSVFile loads a dataset from a CSV file.
func LoadCSVFile(path string, cfg CSVConfig) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	ds, err := LoadCSV(file, cfg)
	return ds, errors.WithMessage(err, path)
}

// LoadCSV reads a dataset from r. Every record must have the same number of
// fields and every feature and label must parse as a float.
func LoadCSV(r io.Reader, cfg CSVConfig) (*Dataset, error) {
	reader := csv.NewReader(r)
	if cfg.Comma != 0 {
		reader.Comma = cfg.Comma
	}
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(ErrMalformedCSV, err.Error())
	}
	if cfg.Header && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	width := len(records[0])
	label, features, err := cfg.columns(width)
	if err != nil {
		return nil, err
	}

	x := mat.NewDense(len(records), len(features), nil)
	y := mat.NewDense(len(records), 1, nil)
	for i, record := range records {
		for j, col := range features {
			v, err := parseField(record[col])
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedCSV, "row %d, column %d: %v", i+1, col, err)
			}
			x.Set(i, j, v)
		}
		v, err := parseField(record[label])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedCSV, "row %d, label column %d: %v", i+1, label, err)
		}
		y.Set(i, 0, v)
	}

	return &Dataset{X: x, Y: y}, nil
}

// columns resolves the label index and the ordered feature indices for
// records of the given width.
func (cfg CSVConfig) columns(width int) (label int, features []int, err error) {
	label = cfg.LabelColumn
	if label < 0 {
		label += width
	}
	if label < 0 || label >= width {
		return 0, nil, errors.Wrapf(ErrInvalidConfig, "label column %d out of range for %d columns", cfg.LabelColumn, width)
	}

	skip := make(map[int]bool, len(cfg.SkipColumns)+1)
	for _, c := range cfg.SkipColumns {
		if c < 0 || c >= width {
			return 0, nil, errors.Wrapf(ErrInvalidConfig, "skip column %d out of range for %d columns", c, width)
		}
		skip[c] = true
	}
	skip[label] = true

	for c := 0; c < width; c++ {
		if !skip[c] {
			features = append(features, c)
		}
	}
	if len(features) == 0 {
		return 0, nil, errors.Wrap(ErrInvalidConfig, "no feature columns")
	}
	return label, features, nil
}

func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Round rounds every element of m to the nearest integer, turning raw
// regression outputs into class scores.
func Round(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return math.Round(v) }, m)
	return &out
}

// Accuracy returns the percentage of rounded predictions within 0.5 of their
// label. pred and labels must have the same shape.
func Accuracy(pred, labels mat.Matrix) (float64, error) {
	pr, pc := pred.Dims()
	lr, lc := labels.Dims()
	if pr != lr || pc != lc {
		return 0, errors.Wrapf(ErrInvalidConfig, "predictions are %dx%d, labels %dx%d", pr, pc, lr, lc)
	}

	rounded := Round(pred)
	correct := 0
	for i := 0; i < pr; i++ {
		for j := 0; j < pc; j++ {
			if math.Abs(rounded.At(i, j)-labels.At(i, j)) < 0.5 {
				correct++
			}
		}
	}
	return 100 * float64(correct) / float64(pr*pc), nil
}
