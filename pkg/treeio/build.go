package treeio

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"

	"github.com/Sumatoshi-tech/contourfold/pkg/contour"
	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// ErrWrongKind is returned when a document is converted into something its
// kind does not describe.
var ErrWrongKind = errors.New("wrong document kind")

// Complex builds the scalar complex a complex document describes.
func (d *Document) Complex() (*contour.ScalarComplex, error) {
	if d.Kind != KindComplex {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrWrongKind, d.Kind, KindComplex)
	}

	nodes := slices.SortedFunc(slices.Values(d.Nodes), func(a, b NodeSpec) int {
		return cmp.Compare(a.ID, b.ID)
	})

	c := contour.NewScalarComplex()
	for _, node := range nodes {
		c.AddNode(node.Value)
	}

	for _, edge := range d.Edges {
		u, uok := c.Node(edge[0])
		v, vok := c.Node(edge[1])

		if !uok || !vok {
			return nil, fmt.Errorf("%w: edge [%d, %d] has an unknown endpoint", ErrInvalidDocument, edge[0], edge[1])
		}

		c.AddEdge(u, v)
	}

	return c, nil
}

// ContourTree builds the contour tree a contour_tree document describes. Edge
// members listed for V to U are reversed to follow the edge's direction.
func (d *Document) ContourTree() (*contour.Tree, error) {
	if d.Kind != KindContourTree {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrWrongKind, d.Kind, KindContourTree)
	}

	tree := contour.NewTree()
	nodes := make(map[int]graph.Node, len(d.Nodes))

	for _, spec := range d.Nodes {
		nodes[spec.ID] = tree.AddNode(spec.ID, spec.Value)
	}

	edgeMembers := make(map[edgeKey]EdgeMembers)

	if d.Members != nil {
		for key, members := range d.Members.Nodes {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("%w: members.nodes key %q", ErrInvalidDocument, key)
			}

			node, ok := nodes[id]
			if !ok {
				return nil, fmt.Errorf("%w: members.nodes key %q", ErrInvalidDocument, key)
			}

			tree.SetNodeMembers(node, members)
		}

		for _, entry := range d.Members.Edges {
			edgeMembers[keyOf(entry.U, entry.V)] = entry
		}
	}

	for _, edge := range d.Edges {
		u, uok := nodes[edge[0]]
		v, vok := nodes[edge[1]]

		if !uok || !vok {
			return nil, fmt.Errorf("%w: edge [%d, %d] has an unknown endpoint", ErrInvalidDocument, edge[0], edge[1])
		}

		entry := edgeMembers[keyOf(edge[0], edge[1])]

		members := entry.Members
		if entry.U != edge[0] {
			members = slices.Clone(members)
			slices.Reverse(members)
		}

		tree.AddEdgeWithMembers(u, v, members)
	}

	return tree, nil
}

// Build returns the contour tree of the document, computing it first when the
// document is a complex.
func (d *Document) Build() (*contour.Tree, error) {
	switch d.Kind {
	case KindComplex:
		c, err := d.Complex()
		if err != nil {
			return nil, err
		}

		tree, err := contour.Compute(c)
		if err != nil {
			return nil, fmt.Errorf("compute contour tree: %w", err)
		}

		return tree, nil
	case KindContourTree:
		return d.ContourTree()
	default:
		return nil, fmt.Errorf("%w: %q", ErrWrongKind, d.Kind)
	}
}

// Exportable is a contour tree whose nodes and edges know their vertex
// members. Both source and folded trees qualify.
type Exportable interface {
	Nodes() iter.Seq[graph.Node]
	Edges() iter.Seq[graph.Edge]
	U(edge graph.Edge) graph.Node
	V(edge graph.Edge) graph.Node
	ID(node graph.Node) int
	Value(node graph.Node) float64
	NodeMemberIDs(node graph.Node) []int
	EdgeMemberIDs(edge graph.Edge) []int
}

// Export describes the live part of tree as a contour_tree document ordered
// by ID. Members are written only where they differ from the default of a
// node standing for itself and an edge standing for nothing.
//
// Edges are written with the smaller ID first. A contour.Tree lists edge
// members in arc order from U, so they are reversed along with a flipped
// edge; a folded tree lists them ascending and they are kept as is.
func Export(tree Exportable) *Document {
	doc := &Document{Kind: KindContourTree}
	members := &MemberSpec{}

	_, arcOrdered := tree.(*contour.Tree)

	for node := range tree.Nodes() {
		id := tree.ID(node)
		doc.Nodes = append(doc.Nodes, NodeSpec{ID: id, Value: tree.Value(node)})

		if ids := tree.NodeMemberIDs(node); !slices.Equal(ids, []int{id}) {
			if members.Nodes == nil {
				members.Nodes = make(map[string][]int)
			}

			members.Nodes[strconv.Itoa(id)] = ids
		}
	}

	for edge := range tree.Edges() {
		u, v := tree.ID(tree.U(edge)), tree.ID(tree.V(edge))
		ids := tree.EdgeMemberIDs(edge)

		if u > v {
			u, v = v, u

			if arcOrdered {
				ids = slices.Clone(ids)
				slices.Reverse(ids)
			}
		}

		doc.Edges = append(doc.Edges, [2]int{u, v})

		if len(ids) > 0 {
			members.Edges = append(members.Edges, EdgeMembers{U: u, V: v, Members: ids})
		}
	}

	slices.SortFunc(doc.Nodes, func(a, b NodeSpec) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(doc.Edges, compareEdges)
	slices.SortFunc(members.Edges, func(a, b EdgeMembers) int {
		return compareEdges([2]int{a.U, a.V}, [2]int{b.U, b.V})
	})

	if members.Nodes != nil || members.Edges != nil {
		doc.Members = members
	}

	return doc
}

func compareEdges(a, b [2]int) int {
	if c := cmp.Compare(a[0], b[0]); c != 0 {
		return c
	}

	return cmp.Compare(a[1], b[1])
}
