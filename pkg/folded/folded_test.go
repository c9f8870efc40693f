package folded_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/contourfold/internal/fixtures"
	"github.com/Sumatoshi-tech/contourfold/pkg/folded"
	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
)

// idArcs lists the live edges as sorted source ID pairs.
func idArcs(tree *folded.Tree) [][2]int {
	var result [][2]int

	for edge := range tree.Edges() {
		u, v := tree.ID(tree.U(edge)), tree.ID(tree.V(edge))
		if u > v {
			u, v = v, u
		}

		result = append(result, [2]int{u, v})
	}

	slices.SortFunc(result, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}

		return a[1] - b[1]
	})

	return result
}

// assertConserved checks that every aggregate reachable from the live tree is
// its base plus the sizes of what it nests.
func assertConserved(t *testing.T, tree *folded.Tree) {
	t.Helper()

	var check func(members folded.Members)
	check = func(members folded.Members) {
		sum := members.Base()

		for _, ref := range members.Nested() {
			sum += tree.MemberSize(ref)

			if ref.Kind == folded.NodeMember {
				check(tree.NodeFoldMembers(ref.NodeFold()))
			} else {
				check(tree.EdgeFoldMembers(ref.EdgeFold()))
			}
		}

		assert.Equal(t, sum, members.Size())
	}

	for node := range tree.Nodes() {
		check(tree.NodeMembers(node))
	}

	for edge := range tree.Edges() {
		check(tree.EdgeMembers(edge))
	}
}

func mustNode(t *testing.T, tree *folded.Tree, id int) graph.Node {
	t.Helper()

	node, ok := tree.Node(id)
	require.True(t, ok, "node %d is not live", id)

	return node
}

func mustEdge(t *testing.T, tree *folded.Tree, u, v int) graph.Edge {
	t.Helper()

	edge, ok := tree.FindEdge(mustNode(t, tree, u), mustNode(t, tree, v))
	require.True(t, ok, "no live edge %d-%d", u, v)

	return edge
}

func TestTree_MirrorsSource(t *testing.T) {
	t.Parallel()

	source := fixtures.WengerTree()
	tree := folded.New(source)

	assert.Equal(t, source.NumberOfNodes(), tree.NumberOfNodes())
	assert.Equal(t, source.NumberOfEdges(), tree.NumberOfEdges())
	assert.Equal(t, 12, tree.TotalMembers())

	three := mustNode(t, tree, 3)
	assert.InDelta(t, 66.0, tree.Value(three), 0)
	assert.Equal(t, 3, tree.ID(three))

	edge := mustEdge(t, tree, 3, 10)
	assert.Equal(t, 1, tree.EdgeMembers(edge).Size())

	sourceEdge, ok := tree.SourceEdge(edge)
	require.True(t, ok)
	assert.Equal(t, []int{6}, source.EdgeMemberIDs(sourceEdge))

	_, ok = tree.Node(6)
	assert.False(t, ok)
}

func TestTree_CollapseThreeNodePath(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.Path(1, 2, 3))

	b := mustNode(t, tree, 1)
	sizeBefore := tree.NodeMembers(b).Size()

	parent := tree.Collapse(mustEdge(t, tree, 1, 2))
	require.Equal(t, b, parent)

	_, ok := tree.Node(2)
	assert.False(t, ok)
	assert.Equal(t, sizeBefore+1, tree.NodeMembers(b).Size())
	assert.Len(t, tree.NodeMembers(b).Nested(), 2)
	assert.Equal(t, 3, tree.TotalMembers())
	assertConserved(t, tree)

	restored := tree.Uncollapse(b)
	c := tree.Opposite(b, restored)

	assert.Equal(t, 2, tree.ID(c))
	assert.InDelta(t, 3.0, tree.Value(c), 0)
	assert.Equal(t, sizeBefore, tree.NodeMembers(b).Size())
	assert.Empty(t, tree.NodeMembers(b).Nested())
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, idArcs(tree))
}

func TestTree_ReduceNestsNodeAndEdges(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.Path(1, 2, 3))
	middle := mustNode(t, tree, 1)
	middleFold := tree.NodeFold(middle)

	merged := tree.Reduce(middle)
	mergedFold := tree.EdgeFold(merged)

	assert.Equal(t, 1, tree.EdgeMembers(merged).Size())
	assert.Zero(t, tree.EdgeMembers(merged).Base())
	assert.Len(t, tree.EdgeMembers(merged).Nested(), 3)
	assert.Equal(t, middleFold, tree.ReducedFold(mergedFold))
	assert.InDelta(t, 2.0, tree.NodeFoldValue(middleFold), 0)

	_, ok := tree.SourceEdge(merged)
	assert.False(t, ok)
	assert.Equal(t, 3, tree.TotalMembers())
	assertConserved(t, tree)

	restored := tree.Unreduce(merged)

	assert.Equal(t, 1, tree.ID(restored))
	assert.Zero(t, tree.EdgeFoldMembers(mergedFold).Size())
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, idArcs(tree))
	assert.Equal(t, 3, tree.TotalMembers())
}

// foldWenger prunes the Wenger tree down to the star 1, 4, 8 around 5.
func foldWenger(t *testing.T, tree *folded.Tree) {
	t.Helper()

	tree.Collapse(mustEdge(t, tree, 9, 10))
	tree.Reduce(mustNode(t, tree, 10))
	assertConserved(t, tree)

	tree.Collapse(mustEdge(t, tree, 11, 7))
	tree.Collapse(mustEdge(t, tree, 3, 7))
	tree.Reduce(mustNode(t, tree, 7))
	assertConserved(t, tree)
}

func TestExpand_RestoresSubtree(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	before := idArcs(tree)

	foldWenger(t, tree)

	assert.Equal(t, 4, tree.NumberOfNodes())
	assert.Equal(t, 12, tree.TotalMembers())
	assert.Equal(t, 6, tree.EdgeMembers(mustEdge(t, tree, 5, 8)).Size())

	operations := folded.Expand(tree, mustNode(t, tree, 5), mustNode(t, tree, 8))

	assert.Equal(t, 5, operations)
	assert.Equal(t, before, idArcs(tree))
	assert.Equal(t, 12, tree.TotalMembers())
	assertConserved(t, tree)

	for edge := range tree.Edges() {
		assert.False(t, tree.HasReduced(edge))
	}

	for node := range tree.Nodes() {
		assert.False(t, tree.HasCollapsed(node))
	}
}

func TestTree_MemberIDsFlattenNesting(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	assert.Equal(t, []int{6}, tree.EdgeMemberIDs(mustEdge(t, tree, 3, 10)))

	foldWenger(t, tree)

	assert.Equal(t, []int{3, 6, 7, 9, 10, 11}, tree.EdgeMemberIDs(mustEdge(t, tree, 5, 8)))
	assert.Equal(t, []int{5}, tree.NodeMemberIDs(mustNode(t, tree, 5)))

	total := 0
	for node := range tree.Nodes() {
		total += len(tree.NodeMemberIDs(node))
	}

	for edge := range tree.Edges() {
		total += len(tree.EdgeMemberIDs(edge))
	}

	assert.Equal(t, tree.TotalMembers(), total)
}

func TestExpand_IsIdempotent(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())

	assert.Zero(t, folded.Expand(tree, mustNode(t, tree, 7), mustNode(t, tree, 10)))

	foldWenger(t, tree)
	require.Positive(t, folded.Expand(tree, mustNode(t, tree, 5), mustNode(t, tree, 8)))

	assert.Zero(t, folded.Expand(tree, mustNode(t, tree, 5), mustNode(t, tree, 7)))
	assert.Zero(t, folded.Expand(tree, mustNode(t, tree, 7), mustNode(t, tree, 10)))
}

func TestExpand_NonAdjacentPanics(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())

	assert.Panics(t, func() {
		folded.Expand(tree, mustNode(t, tree, 3), mustNode(t, tree, 4))
	})
}

func TestExpandAll_RestoresEverything(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	before := idArcs(tree)

	foldWenger(t, tree)
	tree.Collapse(mustEdge(t, tree, 4, 5))

	assert.Equal(t, 6, folded.ExpandAll(tree))
	assert.Equal(t, before, idArcs(tree))
	assert.Zero(t, folded.ExpandAll(tree))
}

func TestMembers_UnreduceReusesSlotCleanly(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.Path(1, 2, 3, 4))

	merged := tree.Reduce(mustNode(t, tree, 1))
	restored := tree.Unreduce(merged)
	require.Equal(t, 1, tree.ID(restored))

	merged = tree.Reduce(mustNode(t, tree, 2))

	assert.Equal(t, 1, tree.EdgeMembers(merged).Size())
	assert.Len(t, tree.EdgeMembers(merged).Nested(), 3)
	assert.Equal(t, 4, tree.TotalMembers())
	assertConserved(t, tree)
}
