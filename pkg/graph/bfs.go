package graph

import (
	"iter"

	"github.com/hashicorp/go-set/v3"
)

// Adjacency is the read-only part of a graph a walk needs.
type Adjacency interface {
	Degree(node Node) int
	Neighbors(node Node) iter.Seq2[Node, Edge]
}

// BFS walks the part of g reachable from child without passing through
// parent, breadth first, and yields every edge that discovers a new node.
// The parent-child edge itself is not yielded.
func BFS(g Adjacency, parent, child Node) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		visited := set.New[Node](g.Degree(child) + 1)
		visited.Insert(parent)
		visited.Insert(child)

		queue := []Node{child}

		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]

			for neighbor, edge := range g.Neighbors(node) {
				if !visited.Insert(neighbor) {
					continue
				}

				if !yield(edge) {
					return
				}

				queue = append(queue, neighbor)
			}
		}
	}
}
