package contour

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/hashicorp/go-set/v3"

	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// Sentinel errors for contour tree computation.
var (
	ErrEmptyComplex = errors.New("complex has no vertices")
	ErrDisconnected = errors.New("complex is not connected")
)

// Compute builds the contour tree of c and splices out its regular nodes.
func Compute(c *ScalarComplex) (*Tree, error) {
	tree, err := Carr(c)
	if err != nil {
		return nil, err
	}

	tree.Reduce()

	return tree, nil
}

// Carr builds the unreduced contour tree of c: every vertex becomes a node.
// The join and split trees are swept with union-find and merged by peeling
// leaves.
func Carr(c *ScalarComplex) (*Tree, error) {
	n := c.NumberOfNodes()
	if n == 0 {
		return nil, ErrEmptyComplex
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	slices.SortFunc(order, func(a, b int) int {
		switch {
		case less(c.values, a, b):
			return -1
		case less(c.values, b, a):
			return 1
		default:
			return 0
		}
	})

	join := newSweepTree(n)
	if !sweep(c, slices.Backward(order), join.link) {
		return nil, fmt.Errorf("join sweep: %w", ErrDisconnected)
	}

	split := newSweepTree(n)
	if !sweep(c, slices.All(order), func(from, to int) { split.link(to, from) }) {
		return nil, fmt.Errorf("split sweep: %w", ErrDisconnected)
	}

	tree := NewTree()
	for id := range n {
		tree.AddNode(id, c.values[id])
	}

	for _, arc := range merge(join, split, n) {
		tree.AddEdge(graph.Node(arc[0]), graph.Node(arc[1]))
	}

	return tree, nil
}

// sweep visits vertices in the given order, joining the components of the
// already visited vertices. Each time a component merges into the current
// vertex, link is called with the component's last visited vertex and the
// current vertex. It reports whether a single component remains.
func sweep(c *ScalarComplex, order iter.Seq2[int, int], link func(from, to int)) bool {
	parent := make([]int, c.NumberOfNodes())
	last := make([]int, len(parent))
	visited := make([]bool, len(parent))

	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}

		return x
	}

	components := 0

	for _, v := range order {
		parent[v], last[v], visited[v] = v, v, true
		components++

		for neighbor := range c.Neighbors(graph.Node(v)) {
			if !visited[neighbor] {
				continue
			}

			root, own := find(int(neighbor)), find(v)
			if root == own {
				continue
			}

			link(last[root], v)

			parent[root] = own
			last[own] = v
			components--
		}
	}

	return components == 1
}

// sweepTree is a join or split tree with up and down adjacency per vertex.
type sweepTree struct {
	up   []*set.Set[int]
	down []*set.Set[int]
}

func newSweepTree(n int) *sweepTree {
	tree := &sweepTree{
		up:   make([]*set.Set[int], n),
		down: make([]*set.Set[int], n),
	}

	for i := range n {
		tree.up[i] = set.New[int](1)
		tree.down[i] = set.New[int](1)
	}

	return tree
}

// link connects hi above lo.
func (s *sweepTree) link(hi, lo int) {
	s.up[lo].Insert(hi)
	s.down[hi].Insert(lo)
}

// remove deletes v. If v had exactly one neighbor on each side they are
// joined.
func (s *sweepTree) remove(v int) {
	lows, highs := s.down[v].Slice(), s.up[v].Slice()

	for _, lo := range lows {
		s.up[lo].Remove(v)
	}

	for _, hi := range highs {
		s.down[hi].Remove(v)
	}

	s.up[v], s.down[v] = set.New[int](0), set.New[int](0)

	if len(lows) == 1 && len(highs) == 1 {
		s.link(highs[0], lows[0])
	}
}

func only(s *set.Set[int]) int {
	return s.Slice()[0]
}

// merge peels leaves off the join and split trees until a single vertex is
// left and returns the contour tree arcs as (leaf, neighbor) pairs.
func merge(join, split *sweepTree, n int) [][2]int {
	upperLeaf := func(v int) bool { return join.up[v].Size() == 0 && split.down[v].Size() == 1 }
	lowerLeaf := func(v int) bool { return split.down[v].Size() == 0 && join.up[v].Size() == 1 }

	var queue []int

	for v := range n {
		if upperLeaf(v) || lowerLeaf(v) {
			queue = append(queue, v)
		}
	}

	done := make([]bool, n)
	arcs := make([][2]int, 0, n-1)

	for len(queue) > 0 && len(arcs) < n-1 {
		v := queue[0]
		queue = queue[1:]

		if done[v] {
			continue
		}

		var w int

		switch {
		case upperLeaf(v):
			w = only(join.down[v])
		case lowerLeaf(v):
			w = only(split.up[v])
		default:
			continue
		}

		arcs = append(arcs, [2]int{v, w})
		done[v] = true

		join.remove(v)
		split.remove(v)

		if upperLeaf(w) || lowerLeaf(w) {
			queue = append(queue, w)
		}
	}

	return arcs
}
