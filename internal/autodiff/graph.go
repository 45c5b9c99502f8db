package autodiff

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// CountDescendants returns the number of distinct nodes reachable from n
// through operand edges, n included. Shared operands are counted once.
func CountDescendants(n *Node) int {
	if n == nil {
		return 0
	}
	visited := map[*Node]bool{n: true}
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, o := range top.operands {
			if !visited[o] {
				visited[o] = true
				stack = append(stack, o)
			}
		}
	}
	return len(visited)
}

// PrintDescendants writes one line per edge traversal of the graph below n
// and returns CountDescendants(n).
//
// The walk follows edges, not nodes, so a shared operand is printed once for
// every path that reaches it. Each line shows the depth, the op tag, the
// value shape and the node's consumer count inside this graph:
//
//	0: MeanSquaredError 1x1 consumers=0
//	====1: AffineAddMatMul 5x1 consumers=1
func PrintDescendants(w io.Writer, n *Node) (int, error) {
	if n == nil {
		return 0, nil
	}
	g := Walk(n)
	bw := bufio.NewWriter(w)

	var visit func(node *Node, depth int)
	visit = func(node *Node, depth int) {
		id, _ := g.ID(node)
		fmt.Fprintf(bw, "%s%d: %s %s consumers=%d\n",
			strings.Repeat("====", depth), depth, node.op, dims(node.value), g.Nodes[id].Consumers)
		for _, o := range node.operands {
			visit(o, depth+1)
		}
	}
	visit(n, 0)

	if err := bw.Flush(); err != nil {
		return 0, errors.Wrap(err, "print descendants")
	}
	return len(g.Nodes), nil
}

// GraphNode is one distinct node of a walked graph.
type GraphNode struct {
	ID        int   // position in Graph.Nodes, assigned in breadth-first order from the root
	Node      *Node // the node itself
	Layer     int   // longest edge distance from the root
	Consumers int   // number of edges pointing at this node
}

// Edge links a result to one of its operands.
type Edge struct {
	From    int // consumer ID
	To      int // operand ID
	Operand int // operand position in the consumer
}

// Graph is a snapshot of every node reachable from a root and the edges
// between them, suitable for layered layouts.
type Graph struct {
	Nodes []GraphNode
	Edges []Edge
	index map[*Node]int
}

// Walk collects the graph reachable from root. The root has ID 0 and layer 0.
func Walk(root *Node) *Graph {
	g := &Graph{index: make(map[*Node]int)}
	if root == nil {
		return g
	}

	queue := []*Node{root}
	g.add(root)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		from := g.index[node]
		for i, o := range node.operands {
			to, seen := g.index[o]
			if !seen {
				to = g.add(o)
				queue = append(queue, o)
			}
			g.Edges = append(g.Edges, Edge{From: from, To: to, Operand: i})
			g.Nodes[to].Consumers++
		}
	}

	// Consumers come before operands, so a single sweep settles the
	// longest distance of every node.
	for _, node := range consumersFirst(root, nil) {
		gn := g.Nodes[g.index[node]]
		for _, o := range node.operands {
			oid := g.index[o]
			if gn.Layer+1 > g.Nodes[oid].Layer {
				g.Nodes[oid].Layer = gn.Layer + 1
			}
		}
	}
	return g
}

func (g *Graph) add(n *Node) int {
	id := len(g.Nodes)
	g.index[n] = id
	g.Nodes = append(g.Nodes, GraphNode{ID: id, Node: n})
	return id
}

// ID returns the ID assigned to n, if n is part of the graph.
func (g *Graph) ID(n *Node) (int, bool) {
	id, ok := g.index[n]
	return id, ok
}

// Layers groups node IDs by layer, root layer first.
func (g *Graph) Layers() [][]int {
	var layers [][]int
	for _, gn := range g.Nodes {
		for len(layers) <= gn.Layer {
			layers = append(layers, nil)
		}
		layers[gn.Layer] = append(layers[gn.Layer], gn.ID)
	}
	return layers
}

// WriteDOT renders the graph in Graphviz DOT syntax. Edges point from a
// result to its operands; trainable leaves are drawn as boxes and constants
// as dashed boxes.
func (g *Graph) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph backward {")
	fmt.Fprintln(bw, "\tnode [fontname=\"Helvetica\"];")
	for _, layer := range g.Layers() {
		ids := make([]string, len(layer))
		for i, id := range layer {
			ids[i] = fmt.Sprintf("n%d", id)
		}
		fmt.Fprintf(bw, "\t{ rank=same; %s; }\n", strings.Join(ids, "; "))
	}
	for _, gn := range g.Nodes {
		attrs := "shape=ellipse"
		switch gn.Node.op {
		case OpAccumulateGrad:
			attrs = "shape=box"
		case OpNone:
			attrs = "shape=box, style=dashed"
		}
		fmt.Fprintf(bw, "\tn%d [label=\"%s\\n%s\", %s];\n",
			gn.ID, gn.Node.op, dims(gn.Node.value), attrs)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(bw, "\tn%d -> n%d [label=\"%d\"];\n", e.From, e.To, e.Operand)
	}
	fmt.Fprintln(bw, "}")

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "write dot")
	}
	return nil
}

// consumersFirst returns root and every node reachable from it for which
// follow reports true (nil follows all), ordered so each node precedes all of
// its operands. It is the reverse of a depth-first post-order.
func consumersFirst(root *Node, follow func(*Node) bool) []*Node {
	type frame struct {
		node *Node
		next int
	}

	var order []*Node
	visited := map[*Node]bool{root: true}
	stack := []frame{{node: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.operands) {
			child := top.node.operands[top.next]
			top.next++
			if !visited[child] && (follow == nil || follow(child)) {
				visited[child] = true
				stack = append(stack, frame{node: child})
			}
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(order)
	return order
}
