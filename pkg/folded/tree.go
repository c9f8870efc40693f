// Package folded layers a contour tree's values, IDs and member counts on top
// of a fold tree, keeping the member aggregates consistent across every
// collapse, reduce and their inverses.
package folded

import (
	"iter"
	"slices"

	"github.com/Sumatoshi-tech/contourfold/pkg/fold"
	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// Source is a read-only contour tree.
type Source interface {
	Nodes() iter.Seq[graph.Node]
	Edges() iter.Seq[graph.Edge]
	U(edge graph.Edge) graph.Node
	V(edge graph.Edge) graph.Node
	Value(node graph.Node) float64
	ID(node graph.Node) int
	Node(id int) (graph.Node, bool)
	NodeMembers(node graph.Node) int
	EdgeMembers(edge graph.Edge) int
	NodeMemberIDs(node graph.Node) []int
	EdgeMemberIDs(edge graph.Edge) []int
}

// Tree is a foldable view of a Source. It is not safe for concurrent use.
type Tree struct {
	source Source
	folds  *fold.Tree

	nodeSource   *fold.NodeFoldMap[graph.Node]
	edgeSource   *fold.EdgeFoldMap[graph.Edge]
	sourceToFold map[graph.Node]fold.NodeFold

	nodeMembers *fold.NodeFoldMap[Members]
	edgeMembers *fold.EdgeFoldMap[Members]
}

// New mirrors the topology of source into a fresh fold tree.
func New(source Source) *Tree {
	folds := fold.NewTree()

	t := &Tree{
		source:       source,
		folds:        folds,
		nodeSource:   fold.NewNodeFoldMap[graph.Node](folds),
		edgeSource:   fold.NewEdgeFoldMap[graph.Edge](folds),
		sourceToFold: make(map[graph.Node]fold.NodeFold),
		nodeMembers:  fold.NewNodeFoldMap[Members](folds),
		edgeMembers:  fold.NewEdgeFoldMap[Members](folds),
	}

	live := make(map[graph.Node]graph.Node)

	for sourceNode := range source.Nodes() {
		node := folds.AddNode()
		nodeFold := folds.NodeFold(node)

		live[sourceNode] = node
		t.sourceToFold[sourceNode] = nodeFold
		t.nodeSource.Set(nodeFold, sourceNode)
		t.nodeMembers.Set(nodeFold, newMembers(source.NodeMembers(sourceNode)))
	}

	for sourceEdge := range source.Edges() {
		edge := folds.AddEdge(live[source.U(sourceEdge)], live[source.V(sourceEdge)])
		edgeFold := folds.EdgeFold(edge)

		t.edgeSource.Set(edgeFold, sourceEdge)
		t.edgeMembers.Set(edgeFold, newMembers(source.EdgeMembers(sourceEdge)))
	}

	return t
}

// Collapse prunes the leaf end of edge and nests the leaf's and the edge's
// aggregates into the parent. Returns the parent.
func (t *Tree) Collapse(edge graph.Edge) graph.Node {
	edgeFold := t.folds.EdgeFold(edge)

	parent := t.folds.Collapse(edge)
	parentFold := t.folds.NodeFold(parent)
	leafFold := t.folds.OppositeFold(parentFold, edgeFold)

	members := t.nodeMembers.Ref(parentFold)
	members.nest(nodeRef(leafFold), t.nodeMembers.Get(leafFold).Size())
	members.nest(edgeRef(edgeFold), t.edgeMembers.Get(edgeFold).Size())

	return parent
}

// Uncollapse restores the most recently collapsed child of node.
func (t *Tree) Uncollapse(node graph.Node) graph.Edge {
	return t.UncollapseAt(node, t.folds.CollapsedCount(t.folds.NodeFold(node))-1)
}

// UncollapseAt restores the index-th collapsed child of node and takes its
// aggregates back out of node's.
func (t *Tree) UncollapseAt(node graph.Node, index int) graph.Edge {
	edge := t.folds.UncollapseAt(node, index)

	nodeFold := t.folds.NodeFold(node)
	edgeFold := t.folds.EdgeFold(edge)
	leafFold := t.folds.OppositeFold(nodeFold, edgeFold)

	members := t.nodeMembers.Ref(nodeFold)
	members.unnest(nodeRef(leafFold), t.nodeMembers.Get(leafFold).Size())
	members.unnest(edgeRef(edgeFold), t.edgeMembers.Get(edgeFold).Size())

	return edge
}

// Reduce bypasses the degree-2 node and nests it and both of its edges into
// the aggregate of the merged edge.
func (t *Tree) Reduce(node graph.Node) graph.Edge {
	nodeFold := t.folds.NodeFold(node)

	merged := t.folds.Reduce(node)
	mergedFold := t.folds.EdgeFold(merged)
	uvFold, vwFold := t.folds.UVFold(nodeFold), t.folds.VWFold(nodeFold)

	members := newMembers(0)
	members.nest(nodeRef(nodeFold), t.nodeMembers.Get(nodeFold).Size())
	members.nest(edgeRef(uvFold), t.edgeMembers.Get(uvFold).Size())
	members.nest(edgeRef(vwFold), t.edgeMembers.Get(vwFold).Size())

	t.edgeMembers.Set(mergedFold, members)
	t.edgeSource.Set(mergedFold, graph.InvalidEdge)

	return merged
}

// Unreduce restores the node edge stands in for. The merged edge's aggregate
// is cleared together with its fold record.
func (t *Tree) Unreduce(edge graph.Edge) graph.Node {
	mergedFold := t.folds.EdgeFold(edge)

	node := t.folds.Unreduce(edge)

	t.edgeMembers.Set(mergedFold, Members{})
	t.edgeSource.Set(mergedFold, graph.InvalidEdge)

	return node
}

// Value returns the scalar value of a live node.
func (t *Tree) Value(node graph.Node) float64 {
	return t.source.Value(t.SourceNode(node))
}

// ID returns the source ID of a live node.
func (t *Tree) ID(node graph.Node) int {
	return t.source.ID(t.SourceNode(node))
}

// Node returns the live node of a source ID. It reports false when the ID is
// unknown or currently folded away.
func (t *Tree) Node(id int) (graph.Node, bool) {
	sourceNode, ok := t.source.Node(id)
	if !ok {
		return graph.InvalidNode, false
	}

	nodeFold, ok := t.sourceToFold[sourceNode]
	if !ok {
		return graph.InvalidNode, false
	}

	return t.folds.NodeFromFold(nodeFold)
}

// SourceNode returns the source node behind a live node.
func (t *Tree) SourceNode(node graph.Node) graph.Node {
	return t.nodeSource.Get(t.folds.NodeFold(node))
}

// SourceEdge returns the source edge behind a live edge. Edges created by
// reduce have none.
func (t *Tree) SourceEdge(edge graph.Edge) (graph.Edge, bool) {
	sourceEdge := t.edgeSource.Get(t.folds.EdgeFold(edge))

	return sourceEdge, sourceEdge != graph.InvalidEdge
}

// NodeFoldValue returns the scalar value of any node fold, live or not.
func (t *Tree) NodeFoldValue(nodeFold fold.NodeFold) float64 {
	return t.source.Value(t.nodeSource.Get(nodeFold))
}

// NodeFoldID returns the source ID of any node fold.
func (t *Tree) NodeFoldID(nodeFold fold.NodeFold) int {
	return t.source.ID(t.nodeSource.Get(nodeFold))
}

// NodeMembers returns the aggregate of a live node.
func (t *Tree) NodeMembers(node graph.Node) Members {
	return t.nodeMembers.Get(t.folds.NodeFold(node))
}

// EdgeMembers returns the aggregate of a live edge.
func (t *Tree) EdgeMembers(edge graph.Edge) Members {
	return t.edgeMembers.Get(t.folds.EdgeFold(edge))
}

// NodeFoldMembers returns the aggregate of a node fold.
func (t *Tree) NodeFoldMembers(nodeFold fold.NodeFold) Members {
	return t.nodeMembers.Get(nodeFold)
}

// EdgeFoldMembers returns the aggregate of an edge fold.
func (t *Tree) EdgeFoldMembers(edgeFold fold.EdgeFold) Members {
	return t.edgeMembers.Get(edgeFold)
}

// MemberSize returns the size of the aggregate ref points to.
func (t *Tree) MemberSize(ref MemberRef) int {
	if ref.Kind == NodeMember {
		return t.nodeMembers.Get(ref.NodeFold()).Size()
	}

	return t.edgeMembers.Get(ref.EdgeFold()).Size()
}

// TotalMembers sums the aggregates of every live node and edge. It equals the
// source's total as long as nothing is lost.
func (t *Tree) TotalMembers() int {
	total := 0

	for node := range t.folds.Nodes() {
		total += t.NodeMembers(node).Size()
	}

	for edge := range t.folds.Edges() {
		total += t.EdgeMembers(edge).Size()
	}

	return total
}

// NodeMemberIDs flattens the aggregate of a live node into sorted source
// vertex IDs.
func (t *Tree) NodeMemberIDs(node graph.Node) []int {
	ids := t.collectIDs(nil, nodeRef(t.folds.NodeFold(node)))
	slices.Sort(ids)

	return ids
}

// EdgeMemberIDs flattens the aggregate of a live edge into sorted source
// vertex IDs.
func (t *Tree) EdgeMemberIDs(edge graph.Edge) []int {
	ids := t.collectIDs(nil, edgeRef(t.folds.EdgeFold(edge)))
	slices.Sort(ids)

	return ids
}

func (t *Tree) collectIDs(ids []int, ref MemberRef) []int {
	var members Members

	if ref.Kind == NodeMember {
		members = t.nodeMembers.Get(ref.NodeFold())
		ids = append(ids, t.source.NodeMemberIDs(t.nodeSource.Get(ref.NodeFold()))...)
	} else {
		members = t.edgeMembers.Get(ref.EdgeFold())
		if sourceEdge := t.edgeSource.Get(ref.EdgeFold()); sourceEdge != graph.InvalidEdge {
			ids = append(ids, t.source.EdgeMemberIDs(sourceEdge)...)
		}
	}

	for _, nested := range members.Nested() {
		ids = t.collectIDs(ids, nested)
	}

	return ids
}

// Degree returns the live degree of node.
func (t *Tree) Degree(node graph.Node) int { return t.folds.Degree(node) }

// Neighbors iterates the live neighbors of node.
func (t *Tree) Neighbors(node graph.Node) iter.Seq2[graph.Node, graph.Edge] {
	return t.folds.Neighbors(node)
}

// FindEdge returns the live edge between u and v.
func (t *Tree) FindEdge(u, v graph.Node) (graph.Edge, bool) { return t.folds.FindEdge(u, v) }

// U returns the first endpoint of edge.
func (t *Tree) U(edge graph.Edge) graph.Node { return t.folds.U(edge) }

// V returns the second endpoint of edge.
func (t *Tree) V(edge graph.Edge) graph.Node { return t.folds.V(edge) }

// Opposite returns the endpoint of edge that is not node.
func (t *Tree) Opposite(node graph.Node, edge graph.Edge) graph.Node {
	return t.folds.Opposite(node, edge)
}

// IsNodeValid reports whether node is live.
func (t *Tree) IsNodeValid(node graph.Node) bool { return t.folds.IsNodeValid(node) }

// IsEdgeValid reports whether edge is live.
func (t *Tree) IsEdgeValid(edge graph.Edge) bool { return t.folds.IsEdgeValid(edge) }

// Nodes iterates the live nodes.
func (t *Tree) Nodes() iter.Seq[graph.Node] { return t.folds.Nodes() }

// Edges iterates the live edges.
func (t *Tree) Edges() iter.Seq[graph.Edge] { return t.folds.Edges() }

// NumberOfNodes returns the number of live nodes.
func (t *Tree) NumberOfNodes() int { return t.folds.NumberOfNodes() }

// NumberOfEdges returns the number of live edges.
func (t *Tree) NumberOfEdges() int { return t.folds.NumberOfEdges() }

// NodeFold returns the fold of a live node.
func (t *Tree) NodeFold(node graph.Node) fold.NodeFold { return t.folds.NodeFold(node) }

// EdgeFold returns the fold of a live edge.
func (t *Tree) EdgeFold(edge graph.Edge) fold.EdgeFold { return t.folds.EdgeFold(edge) }

// NodeFromFold returns the live node of nodeFold, if materialized.
func (t *Tree) NodeFromFold(nodeFold fold.NodeFold) (graph.Node, bool) {
	return t.folds.NodeFromFold(nodeFold)
}

// EdgeFromFold returns the live edge of edgeFold, if materialized.
func (t *Tree) EdgeFromFold(edgeFold fold.EdgeFold) (graph.Edge, bool) {
	return t.folds.EdgeFromFold(edgeFold)
}

// IsEdgeFoldValid reports whether edgeFold still has a ledger record.
func (t *Tree) IsEdgeFoldValid(edgeFold fold.EdgeFold) bool {
	return t.folds.IsEdgeFoldValid(edgeFold)
}

// CollapsedCount returns the number of children collapsed into nodeFold.
func (t *Tree) CollapsedCount(nodeFold fold.NodeFold) int {
	return t.folds.CollapsedCount(nodeFold)
}

// CollapsedEdgeFold returns the index-th collapsed edge fold of nodeFold.
func (t *Tree) CollapsedEdgeFold(nodeFold fold.NodeFold, index int) fold.EdgeFold {
	return t.folds.CollapsedEdgeFold(nodeFold, index)
}

// HasCollapsed reports whether any child is collapsed into node.
func (t *Tree) HasCollapsed(node graph.Node) bool { return t.folds.HasCollapsed(node) }

// HasReduced reports whether edge was produced by a reduce.
func (t *Tree) HasReduced(edge graph.Edge) bool { return t.folds.HasReduced(edge) }

// ReducedFold returns the node fold edgeFold stands in for.
func (t *Tree) ReducedFold(edgeFold fold.EdgeFold) fold.NodeFold {
	return t.folds.ReducedFold(edgeFold)
}

// UVFold returns the first edge fold stored by a reduce of nodeFold.
func (t *Tree) UVFold(nodeFold fold.NodeFold) fold.EdgeFold { return t.folds.UVFold(nodeFold) }

// VWFold returns the second edge fold stored by a reduce of nodeFold.
func (t *Tree) VWFold(nodeFold fold.NodeFold) fold.EdgeFold { return t.folds.VWFold(nodeFold) }

// UFold returns the first endpoint fold of edgeFold.
func (t *Tree) UFold(edgeFold fold.EdgeFold) fold.NodeFold { return t.folds.UFold(edgeFold) }

// VFold returns the second endpoint fold of edgeFold.
func (t *Tree) VFold(edgeFold fold.EdgeFold) fold.NodeFold { return t.folds.VFold(edgeFold) }

// NumberOfNodeFolds returns the number of node fold records.
func (t *Tree) NumberOfNodeFolds() int { return t.folds.NumberOfNodeFolds() }

// NumberOfEdgeFolds returns the number of edge fold records.
func (t *Tree) NumberOfEdgeFolds() int { return t.folds.NumberOfEdgeFolds() }
