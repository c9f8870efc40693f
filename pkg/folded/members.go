package folded

import (
	"cmp"
	"slices"

	"github.com/hashicorp/go-set/v3"

	"github.com/Sumatoshi-tech/contourfold/pkg/fold"
)

// MemberKind tells which fold arena a MemberRef points into.
type MemberKind uint8

// Member kinds.
const (
	NodeMember MemberKind = iota
	EdgeMember
)

// MemberRef refers to the Members aggregate of a node or edge fold.
type MemberRef struct {
	Kind  MemberKind
	Index int32
}

func nodeRef(nodeFold fold.NodeFold) MemberRef {
	return MemberRef{Kind: NodeMember, Index: int32(nodeFold)}
}

func edgeRef(edgeFold fold.EdgeFold) MemberRef {
	return MemberRef{Kind: EdgeMember, Index: int32(edgeFold)}
}

// NodeFold returns the referenced node fold.
func (r MemberRef) NodeFold() fold.NodeFold {
	return fold.NodeFold(r.Index)
}

// EdgeFold returns the referenced edge fold.
func (r MemberRef) EdgeFold() fold.EdgeFold {
	return fold.EdgeFold(r.Index)
}

// Members counts the source vertices a fold stands for: its own base count
// plus the sizes of the aggregates nested into it by collapse and reduce.
type Members struct {
	base   int
	size   int
	nested *set.Set[MemberRef]
}

func newMembers(base int) Members {
	return Members{base: base, size: base}
}

// Size returns the base count plus every nested aggregate's size.
func (m Members) Size() int {
	return m.size
}

// Base returns the count contributed by the source element itself.
func (m Members) Base() int {
	return m.base
}

// Nested returns the nested aggregates ordered by kind then fold.
func (m Members) Nested() []MemberRef {
	if m.nested == nil {
		return nil
	}

	refs := m.nested.Slice()
	slices.SortFunc(refs, func(a, b MemberRef) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}

		return cmp.Compare(a.Index, b.Index)
	})

	return refs
}

func (m *Members) nest(ref MemberRef, size int) {
	if m.nested == nil {
		m.nested = set.New[MemberRef](2)
	}

	if !m.nested.Insert(ref) {
		panic("folded: aggregate is already nested")
	}

	m.size += size
}

func (m *Members) unnest(ref MemberRef, size int) {
	if m.nested == nil || !m.nested.Remove(ref) {
		panic("folded: aggregate is not nested")
	}

	m.size -= size
}
