// Package contour builds contour trees of scalar fields defined on the
// vertices of a simplicial complex.
package contour

import (
	"iter"

	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
	"github.com/Sumatoshi-tech/contourfold/pkg/safeconv"
)

// ScalarComplex is the 1-skeleton of a simplicial complex with a scalar value
// per vertex. Vertex IDs are assigned in insertion order.
type ScalarComplex struct {
	graph  *graph.Undirected
	values []float64
}

// NewScalarComplex creates an empty complex.
func NewScalarComplex() *ScalarComplex {
	return &ScalarComplex{graph: graph.NewUndirected()}
}

// AddNode adds a vertex carrying value. Its ID is the number of vertices added
// before it.
func (c *ScalarComplex) AddNode(value float64) graph.Node {
	node := c.graph.AddNode()
	c.values = append(c.values, value)

	return node
}

// AddEdge connects two vertices.
func (c *ScalarComplex) AddEdge(u, v graph.Node) graph.Edge {
	return c.graph.AddEdge(u, v)
}

// Value returns the scalar value of node.
func (c *ScalarComplex) Value(node graph.Node) float64 {
	return c.values[node]
}

// ID returns the vertex ID of node.
func (c *ScalarComplex) ID(node graph.Node) int {
	return int(node)
}

// Node returns the vertex with the given ID.
func (c *ScalarComplex) Node(id int) (graph.Node, bool) {
	handle, ok := safeconv.IntToInt32(id)
	if !ok {
		return graph.InvalidNode, false
	}

	node := graph.Node(handle)

	return node, c.graph.IsNodeValid(node)
}

// Neighbors iterates the vertices adjacent to node.
func (c *ScalarComplex) Neighbors(node graph.Node) iter.Seq2[graph.Node, graph.Edge] {
	return c.graph.Neighbors(node)
}

// Nodes iterates the vertices in ID order.
func (c *ScalarComplex) Nodes() iter.Seq[graph.Node] { return c.graph.Nodes() }

// Edges iterates the edges.
func (c *ScalarComplex) Edges() iter.Seq[graph.Edge] { return c.graph.Edges() }

// U returns the first endpoint of edge.
func (c *ScalarComplex) U(edge graph.Edge) graph.Node { return c.graph.U(edge) }

// V returns the second endpoint of edge.
func (c *ScalarComplex) V(edge graph.Edge) graph.Node { return c.graph.V(edge) }

// NumberOfNodes returns the number of vertices.
func (c *ScalarComplex) NumberOfNodes() int { return c.graph.NumberOfNodes() }

// NumberOfEdges returns the number of edges.
func (c *ScalarComplex) NumberOfEdges() int { return c.graph.NumberOfEdges() }

// less is the simulation-of-simplicity total order: by value, ties broken by
// vertex ID.
func less(values []float64, a, b int) bool {
	if values[a] != values[b] {
		return values[a] < values[b]
	}

	return a < b
}
