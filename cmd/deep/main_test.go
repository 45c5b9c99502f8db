package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "deep "+version+"\n", out.String())

	out.Reset()
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "Commands:")

	assert.Error(t, run([]string{"serve"}, &out))
}

func TestRun_Demo(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, run([]string{"demo", "-dot", dir}, &out))

	assert.Contains(t, out.String(), "The directed acyclic graph of this model has 22 nodes.")
	assert.Contains(t, out.String(), "The directed acyclic graph has 6 nodes.")
	assert.Contains(t, out.String(), "0: MeanSquaredError 1x1 consumers=0\n")

	for _, name := range []string{"generate1.dot", "generate2.dot"} {
		dot, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(dot), "digraph backward {"), name)
	}
}

// writeLinearCSV writes n rows in the wine-quality layout whose label is a
// linear function of the two features.
func writeLinearCSV(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(",a,b,label\n")
	for i := 0; i < n; i++ {
		a := float64(i%5) / 5
		c := float64(i%3) / 3
		fmt.Fprintf(&b, "%d,%g,%g,%g\n", i, a, c, 2*a-c+1)
	}
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestRun_TrainSaveAndResume(t *testing.T) {
	csvPath := writeLinearCSV(t, 30)
	ckpt := filepath.Join(t.TempDir(), "run.deep")

	var out bytes.Buffer
	err := run([]string{"train",
		"-data", csvPath, "-test", csvPath,
		"-epochs", "3", "-batch", "8", "-lr", "0.01",
		"-hidden", "4", "-save", ckpt,
	}, &out)
	require.NoError(t, err, out.String())

	assert.Contains(t, out.String(), "Loaded 30 samples with 2 features")
	assert.Contains(t, out.String(), "Total: 17 parameters")
	assert.Contains(t, out.String(), "Training on epoch 3: loss is ")
	assert.Contains(t, out.String(), "Accuracy is ")
	assert.FileExists(t, ckpt)

	out.Reset()
	err = run([]string{"train",
		"-data", csvPath, "-epochs", "1", "-hidden", "4", "-load", ckpt,
	}, &out)
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "Resumed from "+ckpt+" at epoch 3")
	assert.Contains(t, out.String(), "Training on epoch 4: loss is ")

	// Architecture must match the checkpoint.
	err = run([]string{"train", "-data", csvPath, "-epochs", "0", "-hidden", "5", "-load", ckpt}, &out)
	assert.Error(t, err)
}

func TestRun_TrainAdam(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"train",
		"-data", writeLinearCSV(t, 12), "-epochs", "2", "-batch", "4",
		"-optimizer", "adam", "-lr", "0.001", "-hidden", "3,3",
	}, &out)
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "Training on epoch 2")
}

func TestParseTrainFlags(t *testing.T) {
	var out bytes.Buffer

	cfg, err := parseTrainFlags([]string{"-data", "x.csv", "-hidden", "8, 4"}, &out)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 4}, cfg.hidden)
	assert.Equal(t, 100, cfg.epochs)
	assert.Equal(t, 64, cfg.batchSize)
	assert.InDelta(t, 0.00005, cfg.lr, 0)

	_, err = parseTrainFlags(nil, &out)
	assert.Error(t, err)
	_, err = parseTrainFlags([]string{"-data", "x.csv", "-hidden", "a"}, &out)
	assert.Error(t, err)
	_, err = parseTrainFlags([]string{"-data", "x.csv", "-epochs", "-1"}, &out)
	assert.Error(t, err)

	_, err = newOptimizer(trainConfig{optimizer: "rmsprop", lr: 1}, nil)
	assert.Error(t, err)
}
