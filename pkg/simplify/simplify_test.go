package simplify_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/contourfold/internal/fixtures"
	"github.com/Sumatoshi-tech/contourfold/pkg/contour"
	"github.com/Sumatoshi-tech/contourfold/pkg/folded"
	"github.com/Sumatoshi-tech/contourfold/pkg/observability"
	"github.com/Sumatoshi-tech/contourfold/pkg/simplify"
)

func liveIDs(tree *folded.Tree) []int {
	var ids []int

	for node := range tree.Nodes() {
		ids = append(ids, tree.ID(node))
	}

	slices.Sort(ids)

	return ids
}

func newSimplifier(t *testing.T, threshold float64, opts ...simplify.Option) *simplify.PersistenceSimplifier {
	t.Helper()

	s, err := simplify.New(threshold, opts...)
	require.NoError(t, err)

	return s
}

func TestNew_RejectsNonPositiveThreshold(t *testing.T) {
	t.Parallel()

	for _, threshold := range []float64{0, -1} {
		_, err := simplify.New(threshold)
		require.ErrorIs(t, err, simplify.ErrNonPositiveThreshold)
	}

	s := newSimplifier(t, 5)
	require.ErrorIs(t, s.SetThreshold(-3), simplify.ErrNonPositiveThreshold)
	assert.InDelta(t, 5.0, s.Threshold(), 0)

	require.NoError(t, s.SetThreshold(7))
	assert.InDelta(t, 7.0, s.Threshold(), 0)
}

func TestSimplify_WengerKeepsGlobalExtrema(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	stats := newSimplifier(t, 100).Simplify(context.Background(), tree)

	assert.Equal(t, []int{3, 4}, liveIDs(tree))
	assert.Equal(t, 1, tree.NumberOfEdges())
	assert.Equal(t, 12, tree.TotalMembers())

	assert.Equal(t, 4, stats.Collapsed)
	assert.Equal(t, 3, stats.Reduced)
	assert.Equal(t, 2, stats.Preserved)
	assert.Positive(t, stats.Requeued)

	var values []float64
	for node := range tree.Nodes() {
		values = append(values, tree.Value(node))
	}

	assert.ElementsMatch(t, []float64{66, 16}, values)
}

func TestSimplify_WengerExpandsBackToOriginal(t *testing.T) {
	t.Parallel()

	source := fixtures.WengerTree()
	tree := folded.New(source)
	original := liveIDs(tree)

	newSimplifier(t, 100).Simplify(context.Background(), tree)
	folded.ExpandAll(tree)

	assert.Equal(t, original, liveIDs(tree))
	assert.Equal(t, source.NumberOfEdges(), tree.NumberOfEdges())
	assert.Equal(t, 12, tree.TotalMembers())

	_, ok := tree.Node(3)
	assert.True(t, ok)
}

func TestSimplify_StopsAtThreshold(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	stats := newSimplifier(t, 5).Simplify(context.Background(), tree)

	assert.Equal(t, 1, stats.Collapsed)
	assert.Equal(t, 1, stats.Reduced)
	assert.Equal(t, []int{1, 3, 4, 5, 7, 8, 11}, liveIDs(tree))
	assert.Equal(t, 12, tree.TotalMembers())
}

func TestSimplify_ThresholdMonotonicity(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	ctx := context.Background()

	newSimplifier(t, 10).Simplify(ctx, tree)
	low := liveIDs(tree)

	newSimplifier(t, 100).Simplify(ctx, tree)
	high := liveIDs(tree)

	direct := folded.New(fixtures.WengerTree())
	newSimplifier(t, 100).Simplify(ctx, direct)

	assert.Equal(t, []int{1, 3, 4, 5, 7, 8}, low)
	assert.Subset(t, low, high)
	assert.Subset(t, low, liveIDs(direct))
	assert.Equal(t, liveIDs(direct), high)

	folded.ExpandAll(tree)
	assert.Equal(t, liveIDs(folded.New(fixtures.WengerTree())), liveIDs(tree))
}

func TestSimplify_RepeatedCallsConverge(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	s := newSimplifier(t, 100)

	s.Simplify(context.Background(), tree)
	stats := s.Simplify(context.Background(), tree)

	assert.Zero(t, stats.Collapsed)
	assert.Equal(t, 2, stats.Preserved)
	assert.Equal(t, []int{3, 4}, liveIDs(tree))
}

func TestSimplify_PreservesSoleMonotoneBranch(t *testing.T) {
	t.Parallel()

	//   b(20)  c(25)
	//      \  /
	//      s(10)
	//        |
	//      a(0)
	source := contour.NewTree()
	saddle := source.AddNode(0, 10)
	a := source.AddNode(1, 0)
	b := source.AddNode(2, 20)
	c := source.AddNode(3, 25)
	source.AddEdge(saddle, a)
	source.AddEdge(saddle, b)
	source.AddEdge(saddle, c)

	tree := folded.New(source)
	stats := newSimplifier(t, 100).Simplify(context.Background(), tree)

	assert.Equal(t, []int{1, 3}, liveIDs(tree))
	assert.Equal(t, 1, stats.Collapsed)
	assert.Equal(t, 1, stats.Reduced)
	assert.Equal(t, 2, stats.Preserved)
	assert.Equal(t, 1, stats.Requeued)
	assert.Equal(t, 4, tree.TotalMembers())
}

func TestSimplify_TwoNodeTreeIsUntouched(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.Path(3, 9))
	stats := newSimplifier(t, 100).Simplify(context.Background(), tree)

	assert.Zero(t, stats.Collapsed)
	assert.Equal(t, 1, stats.Popped)
	assert.Equal(t, 1, stats.Preserved)
	assert.Equal(t, []int{0, 1}, liveIDs(tree))
}

func TestDegreeHelpers(t *testing.T) {
	t.Parallel()

	tree := folded.New(fixtures.WengerTree())
	seven, ok := tree.Node(7)
	require.True(t, ok)
	eleven, ok := tree.Node(11)
	require.True(t, ok)

	// 7 (39) has neighbors 10 (53), 8 (58), 11 (30) and 5 (32).
	assert.Equal(t, 2, simplify.UpDegree(tree, seven))
	assert.Equal(t, 2, simplify.DownDegree(tree, seven))
	assert.InDelta(t, 9.0, simplify.Persistence(tree, eleven, seven), 0)
	assert.False(t, simplify.Preserve(tree, eleven, seven))
}

func TestSimplify_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewFoldMetrics(mp.Meter("test"))
	require.NoError(t, err)

	tree := folded.New(fixtures.WengerTree())
	newSimplifier(t, 100, simplify.WithMetrics(metrics)).Simplify(context.Background(), tree)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, point := range sum.DataPoints {
					sums[m.Name] += point.Value
				}
			}
		}
	}

	assert.Equal(t, int64(4), sums["contourfold.collapse.total"])
	assert.Equal(t, int64(3), sums["contourfold.reduce.total"])
	assert.Equal(t, int64(2), sums["contourfold.preserved.total"])
}
