// Package simplify prunes low-persistence branches off a folded contour tree.
package simplify

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/contourfold/pkg/fold"
	"github.com/Sumatoshi-tech/contourfold/pkg/graph"
	"github.com/Sumatoshi-tech/contourfold/pkg/observability"
)

// tracerName is the default OTel tracer name for the simplifier.
const tracerName = "contourfold"

// ErrNonPositiveThreshold is returned for a persistence threshold <= 0.
var ErrNonPositiveThreshold = errors.New("persistence threshold must be positive")

// Context is the surface of a folded contour tree the simplifier drives.
type Context interface {
	Nodes() iter.Seq[graph.Node]
	Edges() iter.Seq[graph.Edge]
	U(edge graph.Edge) graph.Node
	V(edge graph.Edge) graph.Node
	Degree(node graph.Node) int
	Neighbors(node graph.Node) iter.Seq2[graph.Node, graph.Edge]
	Value(node graph.Node) float64

	NodeFold(node graph.Node) fold.NodeFold
	NodeFromFold(nodeFold fold.NodeFold) (graph.Node, bool)

	Collapse(edge graph.Edge) graph.Node
	Reduce(node graph.Node) graph.Edge
}

// Stats summarizes one Simplify call.
type Stats struct {
	// Popped counts queue entries taken, including stale and re-queued ones.
	Popped int
	// Collapsed counts leaves pruned.
	Collapsed int
	// Reduced counts parents merged away after a collapse.
	Reduced int
	// Preserved counts leaves kept as the sole monotone branch of their parent.
	Preserved int
	// Requeued counts entries whose persistence grew since they were queued.
	Requeued int
}

// Option configures a PersistenceSimplifier.
type Option func(*PersistenceSimplifier)

// WithLogger sets the logger for per-prune debug and per-call summary records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *PersistenceSimplifier) { s.logger = logger }
}

// WithMetrics records every call into metrics.
func WithMetrics(metrics *observability.FoldMetrics) Option {
	return func(s *PersistenceSimplifier) { s.metrics = metrics }
}

// WithTracer sets the tracer for the simplify span. Defaults to the global
// provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *PersistenceSimplifier) { s.tracer = tracer }
}

// PersistenceSimplifier greedily collapses leaves in order of increasing
// persistence until the next leaf exceeds the threshold.
type PersistenceSimplifier struct {
	threshold float64
	logger    *slog.Logger
	metrics   *observability.FoldMetrics
	tracer    trace.Tracer
}

// New creates a simplifier for the given persistence threshold.
func New(threshold float64, opts ...Option) (*PersistenceSimplifier, error) {
	s := &PersistenceSimplifier{}

	err := s.SetThreshold(threshold)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	return s, nil
}

// SetThreshold changes the persistence threshold. Non-positive values are
// rejected and leave the current threshold in place.
func (s *PersistenceSimplifier) SetThreshold(threshold float64) error {
	if !(threshold > 0) {
		return fmt.Errorf("%w: %v", ErrNonPositiveThreshold, threshold)
	}

	s.threshold = threshold

	return nil
}

// Threshold returns the persistence threshold.
func (s *PersistenceSimplifier) Threshold() float64 {
	return s.threshold
}

// Simplify runs one pass over tree. Leaves are taken in order of increasing
// persistence; a leaf that is the only branch leaving its parent upwards or
// downwards is kept; the pass stops at the first leaf above the threshold.
// A parent left with degree 2 by a collapse is reduced away. The queue holds
// one entry per leaf edge, taking U as the leaf when both ends are leaves.
// Leaves created during the pass are not queued, so repeated calls converge.
func (s *PersistenceSimplifier) Simplify(ctx context.Context, tree Context) Stats {
	ctx, span := s.tracer.Start(ctx, "contourfold.simplify",
		trace.WithAttributes(attribute.Float64("simplify.threshold", s.threshold)))
	defer span.End()

	start := time.Now()

	var (
		stats Stats
		queue leafQueue
	)

	for edge := range tree.Edges() {
		leaf, parent := tree.U(edge), tree.V(edge)
		if tree.Degree(leaf) != 1 {
			leaf, parent = parent, leaf
		}

		if tree.Degree(leaf) != 1 {
			continue
		}

		queue.push(tree.NodeFold(leaf), Persistence(tree, leaf, parent))
	}

	for queue.Len() > 0 {
		entry := heap.Pop(&queue).(leafEntry)
		stats.Popped++

		leaf, ok := tree.NodeFromFold(entry.leaf)
		if !ok || tree.Degree(leaf) != 1 {
			continue
		}

		edge, parent := leafEdge(tree, leaf)
		persistence := Persistence(tree, leaf, parent)

		if persistence > entry.persistence {
			queue.push(entry.leaf, persistence)
			stats.Requeued++

			continue
		}

		if Preserve(tree, leaf, parent) {
			stats.Preserved++

			continue
		}

		if persistence > s.threshold {
			break
		}

		s.logger.DebugContext(ctx, "simplify: collapse",
			"leaf", entry.leaf, "value", tree.Value(leaf), "persistence", persistence)

		tree.Collapse(edge)
		stats.Collapsed++

		if tree.Degree(parent) == 2 {
			tree.Reduce(parent)
			stats.Reduced++
		}
	}

	elapsed := time.Since(start)

	s.metrics.RecordSimplify(ctx, s.threshold, stats.Collapsed, stats.Reduced, stats.Preserved, elapsed)

	span.SetAttributes(
		attribute.Int("simplify.collapsed", stats.Collapsed),
		attribute.Int("simplify.reduced", stats.Reduced),
		attribute.Int("simplify.preserved", stats.Preserved),
	)

	s.logger.InfoContext(ctx, "simplify: done",
		"threshold", s.threshold,
		"collapsed", stats.Collapsed,
		"reduced", stats.Reduced,
		"preserved", stats.Preserved,
		"requeued", stats.Requeued,
		"duration", elapsed)

	return stats
}

// Persistence is the value difference across the edge between leaf and
// parent.
func Persistence(tree Context, leaf, parent graph.Node) float64 {
	return math.Abs(tree.Value(leaf) - tree.Value(parent))
}

// UpDegree counts the neighbors of node with a strictly greater value.
func UpDegree(tree Context, node graph.Node) int {
	count := 0

	for neighbor := range tree.Neighbors(node) {
		if tree.Value(neighbor) > tree.Value(node) {
			count++
		}
	}

	return count
}

// DownDegree counts the neighbors of node with a value less than or equal to
// node's.
func DownDegree(tree Context, node graph.Node) int {
	count := 0

	for neighbor := range tree.Neighbors(node) {
		if tree.Value(neighbor) <= tree.Value(node) {
			count++
		}
	}

	return count
}

// Preserve reports whether leaf is the sole descending or ascending branch of
// parent and must not be pruned.
func Preserve(tree Context, leaf, parent graph.Node) bool {
	if tree.Value(leaf) <= tree.Value(parent) {
		return DownDegree(tree, parent) == 1
	}

	return UpDegree(tree, parent) == 1
}

func leafEdge(tree Context, leaf graph.Node) (graph.Edge, graph.Node) {
	for neighbor, edge := range tree.Neighbors(leaf) {
		return edge, neighbor
	}

	panic("simplify: leaf has no neighbor")
}
