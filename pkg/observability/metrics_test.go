package observability_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/contourfold/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.CommandMetrics, *observability.FoldMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	commands, err := observability.NewCommandMetrics(meter)
	require.NoError(t, err)

	fold, err := observability.NewFoldMetrics(meter)
	require.NoError(t, err)

	return commands, fold, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	found := findMetric(rm, name)
	require.NotNil(t, found, name)

	sum, ok := found.Data.(metricdata.Sum[int64])
	require.True(t, ok, name)

	var total int64
	for _, point := range sum.DataPoints {
		total += point.Value
	}

	return total
}

func TestCommandMetrics_RecordCommand(t *testing.T) {
	t.Parallel()

	commands, _, reader := setupTestMeter(t)
	ctx := context.Background()

	commands.RecordCommand(ctx, "simplify", observability.StatusOK, 20*time.Millisecond)
	commands.RecordCommand(ctx, "contour", observability.StatusError, time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, rm, "contourfold.commands.total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "contourfold.command.errors.total"))

	hist := findMetric(rm, "contourfold.command.duration.seconds")
	require.NotNil(t, hist)

	data, ok := hist.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, data.DataPoints, 2)
}

func TestCommandMetrics_TrackBalancesInflight(t *testing.T) {
	t.Parallel()

	commands, _, reader := setupTestMeter(t)
	ctx := context.Background()

	done := commands.Track(ctx, "expand")
	assert.Equal(t, int64(1), sumOf(t, collectMetrics(t, reader), "contourfold.commands.inflight"))

	done(errors.New("boom"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(0), sumOf(t, rm, "contourfold.commands.inflight"))
	assert.Equal(t, int64(1), sumOf(t, rm, "contourfold.command.errors.total"))
}

func TestFoldMetrics_Record(t *testing.T) {
	t.Parallel()

	_, fold, reader := setupTestMeter(t)
	ctx := context.Background()

	fold.RecordSimplify(ctx, 100, 4, 3, 2, time.Millisecond)
	fold.RecordExpand(ctx, 5)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(4), sumOf(t, rm, "contourfold.collapse.total"))
	assert.Equal(t, int64(3), sumOf(t, rm, "contourfold.reduce.total"))
	assert.Equal(t, int64(2), sumOf(t, rm, "contourfold.preserved.total"))
	assert.Equal(t, int64(5), sumOf(t, rm, "contourfold.expand.operations.total"))
	assert.NotNil(t, findMetric(rm, "contourfold.simplify.duration.seconds"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var commands *observability.CommandMetrics

	var fold *observability.FoldMetrics

	ctx := context.Background()

	assert.NotPanics(t, func() {
		commands.RecordCommand(ctx, "simplify", observability.StatusOK, time.Second)
		commands.Track(ctx, "simplify")(nil)
		fold.RecordSimplify(ctx, 1, 1, 1, 1, time.Second)
		fold.RecordExpand(ctx, 1)
	})
}

func TestWriteMetrics_TextExposition(t *testing.T) {
	t.Parallel()

	mp, registry, err := observability.PrometheusMeterProvider()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	fold, err := observability.NewFoldMetrics(mp.Meter("test"))
	require.NoError(t, err)

	fold.RecordExpand(context.Background(), 7)

	var buf bytes.Buffer
	require.NoError(t, observability.WriteMetrics(&buf, registry))

	assert.Contains(t, buf.String(), "# TYPE contourfold")
	assert.Contains(t, buf.String(), "expand")
	assert.Contains(t, buf.String(), " 7")
}
