// Package fixtures holds scalar fields shared by tests across packages.
package fixtures

import (
	"github.com/Sumatoshi-tech/contourfold/pkg/contour"
	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// WengerValues are the vertex values of a 4x3 triangulated grid.
var WengerValues = []float64{25, 62, 45, 66, 16, 32, 64, 39, 58, 51, 53, 30}

// WengerEdges are the edges of the triangulated grid as vertex ID pairs.
var WengerEdges = [][2]int{
	{0, 1}, {1, 2}, {3, 4}, {4, 5}, {6, 7}, {7, 8}, {9, 10}, {10, 11},
	{0, 3}, {1, 4}, {2, 5}, {3, 6}, {4, 7}, {5, 8}, {6, 9}, {7, 10}, {8, 11},
	{0, 4}, {1, 5}, {3, 7}, {4, 8}, {6, 10}, {7, 11},
}

// WengerComplex builds the Wenger grid.
func WengerComplex() *contour.ScalarComplex {
	c := contour.NewScalarComplex()

	for _, value := range WengerValues {
		c.AddNode(value)
	}

	for _, edge := range WengerEdges {
		c.AddEdge(graph.Node(edge[0]), graph.Node(edge[1]))
	}

	return c
}

// WengerTree computes the reduced contour tree of the Wenger grid.
func WengerTree() *contour.Tree {
	tree, err := contour.Compute(WengerComplex())
	if err != nil {
		panic(err)
	}

	return tree
}

// Path builds an unreduced contour tree that is a path over the given values,
// with vertex IDs in order.
func Path(values ...float64) *contour.Tree {
	tree := contour.NewTree()

	var previous graph.Node

	for id, value := range values {
		node := tree.AddNode(id, value)
		if id > 0 {
			tree.AddEdge(previous, node)
		}

		previous = node
	}

	return tree
}
