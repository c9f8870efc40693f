package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCollapseTotal     = "contourfold.collapse.total"
	metricReduceTotal       = "contourfold.reduce.total"
	metricPreservedTotal    = "contourfold.preserved.total"
	metricExpandOperations  = "contourfold.expand.operations.total"
	metricSimplifyDuration  = "contourfold.simplify.duration.seconds"
	attrThreshold           = "threshold"
	simplifyDurationUnit    = "s"
	foldOperationUnit       = "{operation}"
	foldPreservedBranchUnit = "{branch}"
)

// simplifyBucketBoundaries covers 10µs to 10s; simplification is bounded by
// tree size and runs in-process.
var simplifyBucketBoundaries = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2.5, 10}

// FoldMetrics holds the OTel instruments for fold tree simplification and
// expansion. A nil *FoldMetrics records nothing.
type FoldMetrics struct {
	collapseTotal    metric.Int64Counter
	reduceTotal      metric.Int64Counter
	preservedTotal   metric.Int64Counter
	expandOperations metric.Int64Counter
	simplifyDuration metric.Float64Histogram
}

// NewFoldMetrics creates fold metric instruments from the given meter.
func NewFoldMetrics(mt metric.Meter) (*FoldMetrics, error) {
	collapseTotal, err := mt.Int64Counter(metricCollapseTotal,
		metric.WithDescription("Total number of leaf collapses"),
		metric.WithUnit(foldOperationUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCollapseTotal, err)
	}

	reduceTotal, err := mt.Int64Counter(metricReduceTotal,
		metric.WithDescription("Total number of degree-2 reductions"),
		metric.WithUnit(foldOperationUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReduceTotal, err)
	}

	preservedTotal, err := mt.Int64Counter(metricPreservedTotal,
		metric.WithDescription("Total number of leaves kept as a sole monotone branch"),
		metric.WithUnit(foldPreservedBranchUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPreservedTotal, err)
	}

	expandOperations, err := mt.Int64Counter(metricExpandOperations,
		metric.WithDescription("Total number of unreduce and uncollapse operations issued by expansion"),
		metric.WithUnit(foldOperationUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricExpandOperations, err)
	}

	simplifyDuration, err := mt.Float64Histogram(metricSimplifyDuration,
		metric.WithDescription("Simplify call duration in seconds"),
		metric.WithUnit(simplifyDurationUnit),
		metric.WithExplicitBucketBoundaries(simplifyBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSimplifyDuration, err)
	}

	return &FoldMetrics{
		collapseTotal:    collapseTotal,
		reduceTotal:      reduceTotal,
		preservedTotal:   preservedTotal,
		expandOperations: expandOperations,
		simplifyDuration: simplifyDuration,
	}, nil
}

// RecordSimplify records the outcome of one simplify call.
func (fm *FoldMetrics) RecordSimplify(
	ctx context.Context, threshold float64, collapsed, reduced, preserved int, duration time.Duration,
) {
	if fm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Float64(attrThreshold, threshold))

	fm.collapseTotal.Add(ctx, int64(collapsed), attrs)
	fm.reduceTotal.Add(ctx, int64(reduced), attrs)
	fm.preservedTotal.Add(ctx, int64(preserved), attrs)
	fm.simplifyDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordExpand records the operations issued by one expansion.
func (fm *FoldMetrics) RecordExpand(ctx context.Context, operations int) {
	if fm == nil {
		return
	}

	fm.expandOperations.Add(ctx, int64(operations))
}
