package contour

import (
	"fmt"
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// Tree is a contour tree whose nodes and edges carry the IDs of the complex
// vertices they represent.
type Tree struct {
	graph *graph.Undirected

	values      []float64
	ids         []int
	nodeMembers [][]int
	edgeMembers [][]int

	byID map[int]graph.Node
}

// NewTree creates an empty contour tree.
func NewTree() *Tree {
	return &Tree{
		graph: graph.NewUndirected(),
		byID:  make(map[int]graph.Node),
	}
}

// AddNode adds a node for vertex id. The node's members start as the vertex
// itself. Duplicate IDs panic.
func (t *Tree) AddNode(id int, value float64) graph.Node {
	if _, ok := t.byID[id]; ok {
		panic(fmt.Sprintf("contour: duplicate node id %d", id))
	}

	node := t.graph.AddNode()
	t.values = grow(t.values, int(node))
	t.ids = grow(t.ids, int(node))
	t.nodeMembers = grow(t.nodeMembers, int(node))

	t.values[node] = value
	t.ids[node] = id
	t.nodeMembers[node] = []int{id}
	t.byID[id] = node

	return node
}

// AddEdge adds an arc without members.
func (t *Tree) AddEdge(u, v graph.Node) graph.Edge {
	return t.AddEdgeWithMembers(u, v, nil)
}

// AddEdgeWithMembers adds an arc whose interior holds the given vertex IDs.
func (t *Tree) AddEdgeWithMembers(u, v graph.Node, members []int) graph.Edge {
	edge := t.graph.AddEdge(u, v)
	t.edgeMembers = grow(t.edgeMembers, int(edge))
	t.edgeMembers[edge] = slices.Clone(members)

	return edge
}

// SetNodeMembers replaces the member IDs of node.
func (t *Tree) SetNodeMembers(node graph.Node, members []int) {
	t.nodeMembers[node] = slices.Clone(members)
}

// Value returns the scalar value of node.
func (t *Tree) Value(node graph.Node) float64 {
	return t.values[node]
}

// ID returns the vertex ID of node.
func (t *Tree) ID(node graph.Node) int {
	return t.ids[node]
}

// Node returns the node of vertex id.
func (t *Tree) Node(id int) (graph.Node, bool) {
	node, ok := t.byID[id]

	return node, ok
}

// NodeMembers returns the number of vertices node represents.
func (t *Tree) NodeMembers(node graph.Node) int {
	return len(t.nodeMembers[node])
}

// EdgeMembers returns the number of vertices in the interior of edge.
func (t *Tree) EdgeMembers(edge graph.Edge) int {
	return len(t.edgeMembers[edge])
}

// NodeMemberIDs returns the vertex IDs node represents.
func (t *Tree) NodeMemberIDs(node graph.Node) []int {
	return slices.Clone(t.nodeMembers[node])
}

// EdgeMemberIDs returns the vertex IDs in the interior of edge, ordered from
// U towards V.
func (t *Tree) EdgeMemberIDs(edge graph.Edge) []int {
	return slices.Clone(t.edgeMembers[edge])
}

// Nodes iterates the nodes.
func (t *Tree) Nodes() iter.Seq[graph.Node] { return t.graph.Nodes() }

// Edges iterates the arcs.
func (t *Tree) Edges() iter.Seq[graph.Edge] { return t.graph.Edges() }

// U returns the first endpoint of edge.
func (t *Tree) U(edge graph.Edge) graph.Node { return t.graph.U(edge) }

// V returns the second endpoint of edge.
func (t *Tree) V(edge graph.Edge) graph.Node { return t.graph.V(edge) }

// Degree returns the number of arcs at node.
func (t *Tree) Degree(node graph.Node) int { return t.graph.Degree(node) }

// Neighbors iterates the nodes adjacent to node.
func (t *Tree) Neighbors(node graph.Node) iter.Seq2[graph.Node, graph.Edge] {
	return t.graph.Neighbors(node)
}

// FindEdge returns the arc between u and v.
func (t *Tree) FindEdge(u, v graph.Node) (graph.Edge, bool) { return t.graph.FindEdge(u, v) }

// NumberOfNodes returns the number of nodes.
func (t *Tree) NumberOfNodes() int { return t.graph.NumberOfNodes() }

// NumberOfEdges returns the number of arcs.
func (t *Tree) NumberOfEdges() int { return t.graph.NumberOfEdges() }

// TotalMembers returns the number of vertices represented by the tree.
func (t *Tree) TotalMembers() int {
	total := 0

	for node := range t.Nodes() {
		total += t.NodeMembers(node)
	}

	for edge := range t.Edges() {
		total += t.EdgeMembers(edge)
	}

	return total
}

// Reduce splices out every regular node, a node with exactly one lower and
// one upper neighbor. The node and both arc interiors become the interior of
// the merged arc. It returns the number of nodes removed.
func (t *Tree) Reduce() int {
	removed := 0

	for _, node := range slices.Collect(t.Nodes()) {
		if t.Degree(node) != 2 {
			continue
		}

		var (
			lower, upper         = graph.InvalidNode, graph.InvalidNode
			lowerEdge, upperEdge graph.Edge
		)

		for neighbor, edge := range t.Neighbors(node) {
			if t.below(neighbor, node) {
				lower, lowerEdge = neighbor, edge
			} else {
				upper, upperEdge = neighbor, edge
			}
		}

		if lower == graph.InvalidNode || upper == graph.InvalidNode {
			continue
		}

		members := t.interior(lowerEdge, lower)
		members = append(members, t.nodeMembers[node]...)
		members = append(members, reversed(t.interior(upperEdge, upper))...)

		t.graph.RemoveNode(node)
		t.AddEdgeWithMembers(lower, upper, members)
		delete(t.byID, t.ids[node])

		removed++
	}

	return removed
}

// interior returns the members of edge ordered starting next to from.
func (t *Tree) interior(edge graph.Edge, from graph.Node) []int {
	members := slices.Clone(t.edgeMembers[edge])
	if t.graph.U(edge) != from {
		slices.Reverse(members)
	}

	return members
}

func (t *Tree) below(a, b graph.Node) bool {
	if t.values[a] != t.values[b] {
		return t.values[a] < t.values[b]
	}

	return t.ids[a] < t.ids[b]
}

func reversed(values []int) []int {
	slices.Reverse(values)

	return values
}

func grow[T any](values []T, index int) []T {
	if index < len(values) {
		return values
	}

	return append(values, make([]T, index+1-len(values))...)
}
