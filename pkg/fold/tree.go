// Package fold implements the fold tree: a live undirected graph paired with a
// permanent ledger of node and edge folds, so that leaves can be collapsed and
// degree-2 nodes reduced away while every removed piece stays addressable and
// exactly restorable.
package fold

import (
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/contourfold/pkg/arena"
	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// NodeFold is a permanent handle for a node, valid whether or not the node is
// currently present in the live graph.
type NodeFold int32

// EdgeFold is a permanent handle for an edge.
type EdgeFold int32

// Invalid fold handles.
const (
	InvalidNodeFold NodeFold = -1
	InvalidEdgeFold EdgeFold = -1
)

// Observer is notified whenever a fold arena grows.
type Observer = arena.Observer

type nodeFoldRep struct {
	node      graph.Node
	collapsed []EdgeFold
	uvFold    EdgeFold
	vwFold    EdgeFold
}

type edgeFoldRep struct {
	uFold       NodeFold
	vFold       NodeFold
	reducedFold NodeFold
	edge        graph.Edge
}

// Tree owns a live graph and the two fold arenas that record everything ever
// added to it. It is not safe for concurrent use.
type Tree struct {
	graph graph.Graph

	nodeToFold []NodeFold
	edgeToFold []EdgeFold

	nodeFolds *arena.Arena[nodeFoldRep]
	edgeFolds *arena.Arena[edgeFoldRep]
}

// NewTree creates an empty fold tree over a fresh undirected graph.
func NewTree() *Tree {
	return NewTreeWithGraph(graph.NewUndirected())
}

// NewTreeWithGraph creates a fold tree that takes ownership of g, which must
// be empty.
func NewTreeWithGraph(g graph.Graph) *Tree {
	doAssert(g.NumberOfNodes() == 0, "graph must be empty")

	return &Tree{
		graph:     g,
		nodeFolds: arena.New[nodeFoldRep](),
		edgeFolds: arena.New[edgeFoldRep](),
	}
}

// AddNode adds a live node with a fresh fold.
func (t *Tree) AddNode() graph.Node {
	node := t.graph.AddNode()

	nodeFold := NodeFold(t.nodeFolds.Insert(nodeFoldRep{
		node:   node,
		uvFold: InvalidEdgeFold,
		vwFold: InvalidEdgeFold,
	}))

	t.linkNode(node, nodeFold)

	return node
}

// AddEdge adds a live edge with a fresh fold whose endpoint folds are the
// current folds of u and v.
func (t *Tree) AddEdge(u, v graph.Node) graph.Edge {
	edge := t.graph.AddEdge(u, v)

	edgeFold := EdgeFold(t.edgeFolds.Insert(edgeFoldRep{
		uFold:       t.NodeFold(u),
		vFold:       t.NodeFold(v),
		reducedFold: InvalidNodeFold,
		edge:        edge,
	}))

	t.linkEdge(edge, edgeFold)

	return edge
}

// Collapse prunes the leaf end of edge. The edge fold is appended to the
// parent fold's collapsed list and the leaf is removed from the live graph.
// When both endpoints are leaves, U(edge) is the one pruned. Returns the
// parent.
func (t *Tree) Collapse(edge graph.Edge) graph.Node {
	u, v := t.graph.U(edge), t.graph.V(edge)

	parent := u
	if t.graph.Degree(u) == 1 {
		parent = v
	}

	leaf := t.graph.Opposite(parent, edge)
	doAssert(t.graph.Degree(leaf) == 1, "collapse requires a leaf edge")

	edgeFold := t.EdgeFold(edge)
	parentRep := t.nodeFolds.Get(arena.Handle(t.NodeFold(parent)))
	parentRep.collapsed = append(parentRep.collapsed, edgeFold)

	t.unlinkNode(leaf)
	t.unlinkEdge(edge)
	t.graph.RemoveNode(leaf)

	return parent
}

// Uncollapse restores the most recently collapsed child of node and returns
// the restored edge.
func (t *Tree) Uncollapse(node graph.Node) graph.Edge {
	return t.UncollapseAt(node, t.CollapsedCount(t.NodeFold(node))-1)
}

// UncollapseAt restores the index-th collapsed child of node and returns the
// restored edge. An out of range index panics.
func (t *Tree) UncollapseAt(node graph.Node, index int) graph.Edge {
	nodeFold := t.NodeFold(node)
	rep := t.nodeFolds.Get(arena.Handle(nodeFold))
	doAssert(index >= 0 && index < len(rep.collapsed), "collapsed index out of range")

	edgeFold := rep.collapsed[index]
	rep.collapsed = slices.Delete(rep.collapsed, index, index+1)

	t.restoreNode(t.OppositeFold(nodeFold, edgeFold))

	return t.restoreEdge(edgeFold)
}

// Reduce bypasses the degree-2 node v: its neighbors u and w are joined by a
// new edge whose fold remembers v, and v is removed from the live graph.
func (t *Tree) Reduce(v graph.Node) graph.Edge {
	doAssert(t.graph.Degree(v) == 2, "reduce requires a degree-2 node")

	var (
		ends  [2]graph.Node
		edges [2]graph.Edge
		idx   int
	)

	for neighbor, edge := range t.graph.Neighbors(v) {
		ends[idx], edges[idx] = neighbor, edge
		idx++
	}

	uw := t.AddEdge(ends[0], ends[1])

	vFold := t.NodeFold(v)
	vRep := t.nodeFolds.Get(arena.Handle(vFold))
	vRep.uvFold = t.EdgeFold(edges[0])
	vRep.vwFold = t.EdgeFold(edges[1])

	t.edgeFolds.Get(arena.Handle(t.EdgeFold(uw))).reducedFold = vFold

	t.unlinkEdge(edges[0])
	t.unlinkEdge(edges[1])
	t.unlinkNode(v)
	t.graph.RemoveNode(v)

	return uw
}

// Unreduce restores the node bypassed by edge together with its two original
// edges. The fold record of edge is deleted. Returns the restored node.
func (t *Tree) Unreduce(uw graph.Edge) graph.Node {
	uwFold := t.EdgeFold(uw)
	vFold := t.edgeFolds.Get(arena.Handle(uwFold)).reducedFold
	doAssert(vFold != InvalidNodeFold, "unreduce requires a reduced edge")

	v := t.restoreNode(vFold)

	vRep := t.nodeFolds.Get(arena.Handle(vFold))
	uvFold, vwFold := vRep.uvFold, vRep.vwFold
	vRep.uvFold, vRep.vwFold = InvalidEdgeFold, InvalidEdgeFold

	t.restoreEdge(uvFold)
	t.restoreEdge(vwFold)

	t.unlinkEdge(uw)
	t.edgeFolds.Remove(arena.Handle(uwFold))
	t.graph.RemoveEdge(uw)

	return v
}

// OppositeFold returns the endpoint fold of edgeFold that is not nodeFold.
func (t *Tree) OppositeFold(nodeFold NodeFold, edgeFold EdgeFold) NodeFold {
	rep := t.edgeFolds.Get(arena.Handle(edgeFold))

	switch nodeFold {
	case rep.uFold:
		return rep.vFold
	case rep.vFold:
		return rep.uFold
	default:
		panic("fold: node fold is not an endpoint of edge fold")
	}
}

func (t *Tree) restoreNode(nodeFold NodeFold) graph.Node {
	doAssert(t.nodeFolds.Get(arena.Handle(nodeFold)).node == graph.InvalidNode, "node fold is already materialized")

	node := t.graph.AddNode()
	t.nodeFolds.Get(arena.Handle(nodeFold)).node = node
	t.linkNode(node, nodeFold)

	return node
}

func (t *Tree) restoreEdge(edgeFold EdgeFold) graph.Edge {
	rep := t.edgeFolds.Get(arena.Handle(edgeFold))
	doAssert(rep.edge == graph.InvalidEdge, "edge fold is already materialized")

	u := t.nodeFolds.Get(arena.Handle(rep.uFold)).node
	v := t.nodeFolds.Get(arena.Handle(rep.vFold)).node
	doAssert(u != graph.InvalidNode && v != graph.InvalidNode, "edge fold endpoints are not materialized")

	edge := t.graph.AddEdge(u, v)
	rep.edge = edge
	t.linkEdge(edge, edgeFold)

	return edge
}

func (t *Tree) linkNode(node graph.Node, nodeFold NodeFold) {
	for int(node) >= len(t.nodeToFold) {
		t.nodeToFold = append(t.nodeToFold, InvalidNodeFold)
	}

	t.nodeToFold[node] = nodeFold
}

func (t *Tree) linkEdge(edge graph.Edge, edgeFold EdgeFold) {
	for int(edge) >= len(t.edgeToFold) {
		t.edgeToFold = append(t.edgeToFold, InvalidEdgeFold)
	}

	t.edgeToFold[edge] = edgeFold
}

func (t *Tree) unlinkNode(node graph.Node) {
	nodeFold := t.NodeFold(node)
	t.nodeFolds.Get(arena.Handle(nodeFold)).node = graph.InvalidNode
	t.nodeToFold[node] = InvalidNodeFold
}

func (t *Tree) unlinkEdge(edge graph.Edge) {
	edgeFold := t.EdgeFold(edge)
	t.edgeFolds.Get(arena.Handle(edgeFold)).edge = graph.InvalidEdge
	t.edgeToFold[edge] = InvalidEdgeFold
}

// NodeFold returns the fold of a live node.
func (t *Tree) NodeFold(node graph.Node) NodeFold {
	doAssert(t.graph.IsNodeValid(node), "node is not live")

	return t.nodeToFold[node]
}

// EdgeFold returns the fold of a live edge.
func (t *Tree) EdgeFold(edge graph.Edge) EdgeFold {
	doAssert(t.graph.IsEdgeValid(edge), "edge is not live")

	return t.edgeToFold[edge]
}

// NodeFromFold returns the live node of nodeFold, if it is materialized.
func (t *Tree) NodeFromFold(nodeFold NodeFold) (graph.Node, bool) {
	node := t.nodeFolds.Get(arena.Handle(nodeFold)).node

	return node, node != graph.InvalidNode
}

// EdgeFromFold returns the live edge of edgeFold, if it is materialized.
func (t *Tree) EdgeFromFold(edgeFold EdgeFold) (graph.Edge, bool) {
	edge := t.edgeFolds.Get(arena.Handle(edgeFold)).edge

	return edge, edge != graph.InvalidEdge
}

// CollapsedCount returns the number of edge folds collapsed into nodeFold.
func (t *Tree) CollapsedCount(nodeFold NodeFold) int {
	return len(t.nodeFolds.Get(arena.Handle(nodeFold)).collapsed)
}

// CollapsedEdgeFold returns the index-th collapsed edge fold of nodeFold,
// oldest first.
func (t *Tree) CollapsedEdgeFold(nodeFold NodeFold, index int) EdgeFold {
	return t.nodeFolds.Get(arena.Handle(nodeFold)).collapsed[index]
}

// UVFold returns the first edge fold stored by a reduce of nodeFold.
func (t *Tree) UVFold(nodeFold NodeFold) EdgeFold {
	return t.nodeFolds.Get(arena.Handle(nodeFold)).uvFold
}

// VWFold returns the second edge fold stored by a reduce of nodeFold.
func (t *Tree) VWFold(nodeFold NodeFold) EdgeFold {
	return t.nodeFolds.Get(arena.Handle(nodeFold)).vwFold
}

// UFold returns the first endpoint fold of edgeFold.
func (t *Tree) UFold(edgeFold EdgeFold) NodeFold {
	return t.edgeFolds.Get(arena.Handle(edgeFold)).uFold
}

// VFold returns the second endpoint fold of edgeFold.
func (t *Tree) VFold(edgeFold EdgeFold) NodeFold {
	return t.edgeFolds.Get(arena.Handle(edgeFold)).vFold
}

// ReducedFold returns the node fold edgeFold stands in for, or
// InvalidNodeFold.
func (t *Tree) ReducedFold(edgeFold EdgeFold) NodeFold {
	return t.edgeFolds.Get(arena.Handle(edgeFold)).reducedFold
}

// HasReducedFold reports whether edgeFold was produced by a reduce.
func (t *Tree) HasReducedFold(edgeFold EdgeFold) bool {
	return t.ReducedFold(edgeFold) != InvalidNodeFold
}

// HasReduced reports whether the live edge was produced by a reduce.
func (t *Tree) HasReduced(edge graph.Edge) bool {
	return t.HasReducedFold(t.EdgeFold(edge))
}

// HasCollapsed reports whether any child is collapsed into the live node.
func (t *Tree) HasCollapsed(node graph.Node) bool {
	return t.CollapsedCount(t.NodeFold(node)) > 0
}

// IsNodeFoldValid reports whether nodeFold has a ledger record.
func (t *Tree) IsNodeFoldValid(nodeFold NodeFold) bool {
	return t.nodeFolds.Contains(arena.Handle(nodeFold))
}

// IsEdgeFoldValid reports whether edgeFold has a ledger record. Records of
// unreduced edges are deleted.
func (t *Tree) IsEdgeFoldValid(edgeFold EdgeFold) bool {
	return t.edgeFolds.Contains(arena.Handle(edgeFold))
}

// NumberOfNodeFolds returns the number of node fold records.
func (t *Tree) NumberOfNodeFolds() int {
	return t.nodeFolds.Len()
}

// NumberOfEdgeFolds returns the number of edge fold records.
func (t *Tree) NumberOfEdgeFolds() int {
	return t.edgeFolds.Len()
}

// MaxNodeFoldID is an exclusive upper bound of node fold handles.
func (t *Tree) MaxNodeFoldID() int {
	return t.nodeFolds.MaxHandle()
}

// MaxEdgeFoldID is an exclusive upper bound of edge fold handles.
func (t *Tree) MaxEdgeFoldID() int {
	return t.edgeFolds.MaxHandle()
}

// AttachNodeFoldObserver registers observer for node fold arena growth.
func (t *Tree) AttachNodeFoldObserver(observer Observer) {
	t.nodeFolds.Subscribe(observer)
}

// DetachNodeFoldObserver unregisters observer.
func (t *Tree) DetachNodeFoldObserver(observer Observer) {
	t.nodeFolds.Unsubscribe(observer)
}

// AttachEdgeFoldObserver registers observer for edge fold arena growth.
func (t *Tree) AttachEdgeFoldObserver(observer Observer) {
	t.edgeFolds.Subscribe(observer)
}

// DetachEdgeFoldObserver unregisters observer.
func (t *Tree) DetachEdgeFoldObserver(observer Observer) {
	t.edgeFolds.Unsubscribe(observer)
}

// Live graph queries.

// Degree returns the live degree of node.
func (t *Tree) Degree(node graph.Node) int { return t.graph.Degree(node) }

// Neighbors iterates the live neighbors of node.
func (t *Tree) Neighbors(node graph.Node) iter.Seq2[graph.Node, graph.Edge] {
	return t.graph.Neighbors(node)
}

// FindEdge returns the live edge between u and v.
func (t *Tree) FindEdge(u, v graph.Node) (graph.Edge, bool) { return t.graph.FindEdge(u, v) }

// U returns the first endpoint of edge.
func (t *Tree) U(edge graph.Edge) graph.Node { return t.graph.U(edge) }

// V returns the second endpoint of edge.
func (t *Tree) V(edge graph.Edge) graph.Node { return t.graph.V(edge) }

// Opposite returns the endpoint of edge that is not node.
func (t *Tree) Opposite(node graph.Node, edge graph.Edge) graph.Node {
	return t.graph.Opposite(node, edge)
}

// IsNodeValid reports whether node is live.
func (t *Tree) IsNodeValid(node graph.Node) bool { return t.graph.IsNodeValid(node) }

// IsEdgeValid reports whether edge is live.
func (t *Tree) IsEdgeValid(edge graph.Edge) bool { return t.graph.IsEdgeValid(edge) }

// Nodes iterates the live nodes.
func (t *Tree) Nodes() iter.Seq[graph.Node] { return t.graph.Nodes() }

// Edges iterates the live edges.
func (t *Tree) Edges() iter.Seq[graph.Edge] { return t.graph.Edges() }

// NumberOfNodes returns the number of live nodes.
func (t *Tree) NumberOfNodes() int { return t.graph.NumberOfNodes() }

// NumberOfEdges returns the number of live edges.
func (t *Tree) NumberOfEdges() int { return t.graph.NumberOfEdges() }

func doAssert(condition bool, message string) {
	if !condition {
		panic("fold: " + message)
	}
}
