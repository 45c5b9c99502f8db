// Package autodiff implements reverse-mode automatic differentiation over
// dense float64 matrices.
//
// Architecture:
//   - Node: a value, its gradient buffer, an OpKind tag and the operands it
//     was computed from. Nodes are shared by pointer and form a DAG.
//   - Primitives (MatMul, Affine, ReLU, ...): compute the forward value
//     eagerly and return a new result node wired to its operands.
//   - Backward: walks the DAG from a node, fires each node's local gradient
//     rule (package ops) once, and accumulates into trainable leaves.
//   - Introspection: CountDescendants, PrintDescendants, Walk and WriteDOT.
//
// Usage:
//
//	x, _ := autodiff.NewConstant(mat.NewDense(2, 3, data))
//	w, _ := autodiff.NewParameter(mat.NewDense(3, 3, weights))
//
//	xw, _ := autodiff.MatMul(x, w)
//	h, _ := autodiff.ReLU(xw)
//	loss, _ := autodiff.Sum(h)
//
//	if err := loss.Backward(); err != nil {
//	    return err
//	}
//	fmt.Println(mat.Formatted(w.Grad())) // dL/dW
//
// Graph construction and backward mutate gradient buffers in place without
// synchronization; a graph must not be used from several goroutines at once.
package autodiff
