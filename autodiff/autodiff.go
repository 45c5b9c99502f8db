// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over dense
// float64 matrices.
//
// Every value in a computation is a *Node. Leaves hold inputs (constants) or
// trainable parameters; each primitive builds a result node that remembers its
// operands. Calling Backward on the final node pushes gradients back through
// the graph and accumulates them into the trainable leaves.
//
// Example:
//
//	import (
//	    "github.com/born-ml/deep/autodiff"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    x, _ := autodiff.NewConstant(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))
//	    w, _ := autodiff.NewParameter(mat.NewDense(3, 1, []float64{0.1, 0.2, 0.3}))
//
//	    y := autodiff.Must(autodiff.MatMul(x, w))
//	    loss := autodiff.Must(autodiff.Sum(autodiff.Must(autodiff.ReLU(y))))
//
//	    if err := loss.Backward(); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(w.Grad()))
//	}
package autodiff

import (
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/deep/internal/autodiff"
)

// Node is a vertex of the computation graph.
type Node = autodiff.Node

// OpKind tags a node with its gradient rule.
type OpKind = autodiff.OpKind

// Operation kinds.
const (
	OpNone             = autodiff.OpNone
	OpAccumulateGrad   = autodiff.OpAccumulateGrad
	OpTranspose        = autodiff.OpTranspose
	OpMatMul           = autodiff.OpMatMul
	OpReLU             = autodiff.OpReLU
	OpSum              = autodiff.OpSum
	OpAdd              = autodiff.OpAdd
	OpAffine           = autodiff.OpAffine
	OpSubtract         = autodiff.OpSubtract
	OpMeanSquaredError = autodiff.OpMeanSquaredError
)

// Error kinds, matched with errors.Is.
var (
	ErrInvalidGraph         = autodiff.ErrInvalidGraph
	ErrShapeMismatch        = autodiff.ErrShapeMismatch
	ErrUnsupportedOperation = autodiff.ErrUnsupportedOperation
)

// Graph is a snapshot of the nodes and edges reachable from a root.
type Graph = autodiff.Graph

// GraphNode is one distinct node of a Graph.
type GraphNode = autodiff.GraphNode

// Edge links a result to one of its operands.
type Edge = autodiff.Edge

// NewConstant creates a leaf that never receives gradients.
func NewConstant(value mat.Matrix) (*Node, error) {
	return autodiff.NewConstant(value)
}

// NewParameter creates a trainable leaf.
func NewParameter(value mat.Matrix) (*Node, error) {
	return autodiff.NewParameter(value)
}

// NewLeaf creates a leaf, trainable or not.
func NewLeaf(value mat.Matrix, trainable bool) (*Node, error) {
	return autodiff.NewLeaf(value, trainable)
}

// Must panics if err is not nil and returns n otherwise.
func Must(n *Node, err error) *Node {
	return autodiff.Must(n, err)
}

// Transpose returns aᵗ.
func Transpose(a *Node) (*Node, error) {
	return autodiff.Transpose(a)
}

// MatMul returns a·b.
func MatMul(a, b *Node) (*Node, error) {
	return autodiff.MatMul(a, b)
}

// ReLU returns max(a, 0) element-wise.
func ReLU(a *Node) (*Node, error) {
	return autodiff.ReLU(a)
}

// Sum returns the 1×1 sum of every element of a.
func Sum(a *Node) (*Node, error) {
	return autodiff.Sum(a)
}

// Add returns a + b.
func Add(a, b *Node) (*Node, error) {
	return autodiff.Add(a, b)
}

// Subtract returns a - b.
func Subtract(a, b *Node) (*Node, error) {
	return autodiff.Subtract(a, b)
}

// Affine returns x·w with the column vector bias added to every row.
func Affine(bias, x, w *Node) (*Node, error) {
	return autodiff.Affine(bias, x, w)
}

// MeanSquaredError returns the 1×1 mean of (a - b)².
func MeanSquaredError(a, b *Node) (*Node, error) {
	return autodiff.MeanSquaredError(a, b)
}

// CountDescendants returns the number of distinct nodes reachable from n.
func CountDescendants(n *Node) int {
	return autodiff.CountDescendants(n)
}

// PrintDescendants writes an indented tree of the graph below n to w.
func PrintDescendants(w io.Writer, n *Node) (int, error) {
	return autodiff.PrintDescendants(w, n)
}

// Walk collects the graph reachable from root.
func Walk(root *Node) *Graph {
	return autodiff.Walk(root)
}
