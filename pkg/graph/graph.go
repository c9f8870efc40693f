// Package graph provides the mutable undirected graph primitive the fold
// engine operates on.
package graph

import (
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/contourfold/pkg/arena"
)

// Node is a live node handle. Handles of removed nodes may be reused.
type Node int32

// Edge is a live edge handle. Handles of removed edges may be reused.
type Edge int32

// Invalid handles.
const (
	InvalidNode Node = -1
	InvalidEdge Edge = -1
)

// Graph is the contract of a mutable undirected graph.
//
// Neighbors yields (neighbor, connecting edge) pairs in the order the edges were
// added; the graph must not be mutated while the sequence is being consumed.
type Graph interface {
	AddNode() Node
	AddEdge(u, v Node) Edge
	RemoveNode(node Node)
	RemoveEdge(edge Edge)

	Degree(node Node) int
	Neighbors(node Node) iter.Seq2[Node, Edge]
	FindEdge(u, v Node) (Edge, bool)

	U(edge Edge) Node
	V(edge Edge) Node
	Opposite(node Node, edge Edge) Node

	IsNodeValid(node Node) bool
	IsEdgeValid(edge Edge) bool

	Nodes() iter.Seq[Node]
	Edges() iter.Seq[Edge]
	NumberOfNodes() int
	NumberOfEdges() int
	MaxNodeID() int
	MaxEdgeID() int
}

type nodeRecord struct {
	incident []Edge
}

type edgeRecord struct {
	u, v Node
}

// Undirected is an adjacency-list Graph backed by two record arenas.
type Undirected struct {
	nodes *arena.Arena[nodeRecord]
	edges *arena.Arena[edgeRecord]
}

var _ Graph = (*Undirected)(nil)

// NewUndirected creates an empty graph.
func NewUndirected() *Undirected {
	return &Undirected{
		nodes: arena.New[nodeRecord](),
		edges: arena.New[edgeRecord](),
	}
}

// AddNode inserts an isolated node.
func (g *Undirected) AddNode() Node {
	return Node(g.nodes.Insert(nodeRecord{}))
}

// AddEdge connects u and v. Self loops are rejected.
func (g *Undirected) AddEdge(u, v Node) Edge {
	doAssert(g.IsNodeValid(u) && g.IsNodeValid(v), "edge endpoint is not a live node")
	doAssert(u != v, "self loops are not supported")

	edge := Edge(g.edges.Insert(edgeRecord{u: u, v: v}))

	uRec := g.nodes.Get(arena.Handle(u))
	uRec.incident = append(uRec.incident, edge)

	vRec := g.nodes.Get(arena.Handle(v))
	vRec.incident = append(vRec.incident, edge)

	return edge
}

// RemoveNode removes node together with every incident edge.
func (g *Undirected) RemoveNode(node Node) {
	rec := g.nodes.Get(arena.Handle(node))

	for _, edge := range slices.Clone(rec.incident) {
		g.RemoveEdge(edge)
	}

	g.nodes.Remove(arena.Handle(node))
}

// RemoveEdge removes edge from the graph.
func (g *Undirected) RemoveEdge(edge Edge) {
	rec := *g.edges.Get(arena.Handle(edge))

	g.detach(rec.u, edge)
	g.detach(rec.v, edge)
	g.edges.Remove(arena.Handle(edge))
}

func (g *Undirected) detach(node Node, edge Edge) {
	rec := g.nodes.Get(arena.Handle(node))

	idx := slices.Index(rec.incident, edge)
	doAssert(idx >= 0, "edge missing from incidence list")

	rec.incident = slices.Delete(rec.incident, idx, idx+1)
}

// Degree returns the number of edges incident on node.
func (g *Undirected) Degree(node Node) int {
	return len(g.nodes.Get(arena.Handle(node)).incident)
}

// Neighbors iterates the neighbors of node with the connecting edge.
func (g *Undirected) Neighbors(node Node) iter.Seq2[Node, Edge] {
	return func(yield func(Node, Edge) bool) {
		for _, edge := range g.nodes.Get(arena.Handle(node)).incident {
			if !yield(g.Opposite(node, edge), edge) {
				return
			}
		}
	}
}

// FindEdge returns the edge connecting u and v, if any.
func (g *Undirected) FindEdge(u, v Node) (Edge, bool) {
	if !g.IsNodeValid(u) || !g.IsNodeValid(v) {
		return InvalidEdge, false
	}

	from, to := u, v
	if g.Degree(v) < g.Degree(u) {
		from, to = v, u
	}

	for neighbor, edge := range g.Neighbors(from) {
		if neighbor == to {
			return edge, true
		}
	}

	return InvalidEdge, false
}

// U returns the first endpoint of edge.
func (g *Undirected) U(edge Edge) Node {
	return g.edges.Get(arena.Handle(edge)).u
}

// V returns the second endpoint of edge.
func (g *Undirected) V(edge Edge) Node {
	return g.edges.Get(arena.Handle(edge)).v
}

// Opposite returns the endpoint of edge that is not node.
func (g *Undirected) Opposite(node Node, edge Edge) Node {
	rec := g.edges.Get(arena.Handle(edge))

	switch node {
	case rec.u:
		return rec.v
	case rec.v:
		return rec.u
	default:
		panic("graph: node is not an endpoint of edge")
	}
}

// IsNodeValid reports whether node is live.
func (g *Undirected) IsNodeValid(node Node) bool {
	return g.nodes.Contains(arena.Handle(node))
}

// IsEdgeValid reports whether edge is live.
func (g *Undirected) IsEdgeValid(edge Edge) bool {
	return g.edges.Contains(arena.Handle(edge))
}

// Nodes iterates the live nodes in handle order.
func (g *Undirected) Nodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for handle := range g.nodes.All() {
			if !yield(Node(handle)) {
				return
			}
		}
	}
}

// Edges iterates the live edges in handle order.
func (g *Undirected) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for handle := range g.edges.All() {
			if !yield(Edge(handle)) {
				return
			}
		}
	}
}

// NumberOfNodes returns the number of live nodes.
func (g *Undirected) NumberOfNodes() int {
	return g.nodes.Len()
}

// NumberOfEdges returns the number of live edges.
func (g *Undirected) NumberOfEdges() int {
	return g.edges.Len()
}

// MaxNodeID is an exclusive upper bound of node handles.
func (g *Undirected) MaxNodeID() int {
	return g.nodes.MaxHandle()
}

// MaxEdgeID is an exclusive upper bound of edge handles.
func (g *Undirected) MaxEdgeID() int {
	return g.edges.MaxHandle()
}

func doAssert(condition bool, message string) {
	if !condition {
		panic("graph: " + message)
	}
}
