package folded

import (
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/contourfold/pkg/fold"
	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// Expandable is the surface subtree expansion drives.
type Expandable interface {
	Degree(node graph.Node) int
	Neighbors(node graph.Node) iter.Seq2[graph.Node, graph.Edge]
	FindEdge(u, v graph.Node) (graph.Edge, bool)
	U(edge graph.Edge) graph.Node
	V(edge graph.Edge) graph.Node
	Nodes() iter.Seq[graph.Node]
	Edges() iter.Seq[graph.Edge]
	IsEdgeValid(edge graph.Edge) bool

	EdgeFold(edge graph.Edge) fold.EdgeFold
	EdgeFromFold(edgeFold fold.EdgeFold) (graph.Edge, bool)
	IsEdgeFoldValid(edgeFold fold.EdgeFold) bool

	HasReduced(edge graph.Edge) bool
	Unreduce(edge graph.Edge) graph.Node
	HasCollapsed(node graph.Node) bool
	Uncollapse(node graph.Node) graph.Edge
}

var _ Expandable = (*Tree)(nil)

// Expand restores everything folded beneath the live edge between parent and
// child: the reduced edges and collapsed children of the subtree hanging off
// child, and the collapsed children of parent. It returns the number of
// unreduce and uncollapse operations performed.
//
// The work queue holds edge folds, which stay stable while live edge handles
// are recycled by the restores.
func Expand(tree Expandable, parent, child graph.Node) int {
	start, ok := tree.FindEdge(parent, child)
	if !ok {
		panic("folded: parent and child are not adjacent")
	}

	queue := []fold.EdgeFold{tree.EdgeFold(start)}
	for edge := range graph.BFS(tree, parent, child) {
		queue = append(queue, tree.EdgeFold(edge))
	}

	operations := 0

	drain := func(node graph.Node) {
		for tree.HasCollapsed(node) {
			queue = append(queue, tree.EdgeFold(tree.Uncollapse(node)))
			operations++
		}
	}

	for len(queue) > 0 {
		edgeFold := queue[0]
		queue = queue[1:]

		if !tree.IsEdgeFoldValid(edgeFold) {
			continue
		}

		edge, ok := tree.EdgeFromFold(edgeFold)
		if !ok {
			continue
		}

		if tree.HasReduced(edge) {
			node := tree.Unreduce(edge)
			operations++

			for _, restored := range tree.Neighbors(node) {
				queue = append(queue, tree.EdgeFold(restored))
			}

			drain(node)

			continue
		}

		u, v := tree.U(edge), tree.V(edge)
		drain(u)
		drain(v)
	}

	return operations
}

// ExpandAll restores the whole tree to full resolution and returns the number
// of operations performed.
func ExpandAll(tree Expandable) int {
	total := 0

	for {
		operations := 0

		for _, node := range slices.Collect(tree.Nodes()) {
			for tree.HasCollapsed(node) {
				tree.Uncollapse(node)
				operations++
			}
		}

		for _, edge := range slices.Collect(tree.Edges()) {
			if tree.IsEdgeValid(edge) {
				operations += Expand(tree, tree.U(edge), tree.V(edge))
			}
		}

		if operations == 0 {
			return total
		}

		total += operations
	}
}
