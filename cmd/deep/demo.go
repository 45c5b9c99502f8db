package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
	"github.com/born-ml/deep/internal/nn"
)

func runDemo(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(stdout)
	dotDir := fs.String("dot", "", "Directory to write Graphviz .dot files into (none if empty)")
	seed := fs.Uint64("seed", nn.DefaultSeed, "Seed for weight initialization")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loss, err := modelGraph(*seed)
	if err != nil {
		return errors.WithMessage(err, "demonstration 1")
	}
	if err := describe(stdout, loss, "The directed acyclic graph of this model", *dotDir, "generate1.dot"); err != nil {
		return err
	}

	fmt.Fprintln(stdout)

	loss, err = sharedOperandGraph()
	if err != nil {
		return errors.WithMessage(err, "demonstration 2")
	}
	return describe(stdout, loss, "The directed acyclic graph", *dotDir, "generate2.dot")
}

// modelGraph builds the MSE loss of an 11-64-64-32-1 regressor on a batch of
// five samples. Every node but the weights has a single consumer.
func modelGraph(seed uint64) (*autodiff.Node, error) {
	model, err := nn.NewMLP([]int{11, 64, 64, 32, 1}, nn.WithRand(nn.NewRand(seed)))
	if err != nil {
		return nil, err
	}
	x, err := autodiff.NewConstant(mat.NewDense(5, 11, nil))
	if err != nil {
		return nil, err
	}
	y, err := model.Forward(x)
	if err != nil {
		return nil, err
	}
	return nn.MSELoss(y, mat.NewDense(5, 1, []float64{1, 0, 1, 2, 1}))
}

// sharedOperandGraph builds sum(relu(x·w) + x), where x feeds two consumers.
func sharedOperandGraph() (*autodiff.Node, error) {
	x, err := autodiff.NewConstant(filled(2, 3, 1.5))
	if err != nil {
		return nil, err
	}
	w, err := autodiff.NewParameter(filled(3, 3, 0.5))
	if err != nil {
		return nil, err
	}

	xw, err := autodiff.MatMul(x, w)
	if err != nil {
		return nil, err
	}
	h, err := autodiff.ReLU(xw)
	if err != nil {
		return nil, err
	}
	s, err := autodiff.Add(h, x)
	if err != nil {
		return nil, err
	}
	return autodiff.Sum(s)
}

func describe(w io.Writer, root *autodiff.Node, title, dotDir, dotName string) error {
	count, err := autodiff.PrintDescendants(w, root)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s has %d nodes.\n", title, count)

	if dotDir == "" {
		return nil
	}
	path := filepath.Join(dotDir, dotName)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create dot file")
	}
	defer f.Close()

	if err := autodiff.Walk(root).WriteDOT(f); err != nil {
		return err
	}
	fmt.Fprintf(w, "View the generated graph in %s.\n", path)
	return f.Close()
}

func filled(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}
