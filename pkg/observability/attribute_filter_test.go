package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/contourfold/pkg/observability"
)

func filteredSpanAttrs(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	result := make(map[string]any)
	for _, kv := range spans[0].Attributes {
		result[string(kv.Key)] = kv.Value.AsInterface()
	}

	return result
}

func TestAttributeFilter_AllowsFoldAttributes(t *testing.T) {
	t.Parallel()

	attrs := filteredSpanAttrs(t, nil,
		attribute.Float64("simplify.threshold", 100),
		attribute.Int("simplify.collapsed", 4),
		attribute.Int("expand.operations", 5),
		attribute.String("command.name", "simplify"),
		attribute.Bool("error", true),
	)

	assert.InDelta(t, 100.0, attrs["simplify.threshold"], 0)
	assert.Equal(t, int64(4), attrs["simplify.collapsed"])
	assert.Equal(t, int64(5), attrs["expand.operations"])
	assert.Equal(t, "simplify", attrs["command.name"])
	assert.Equal(t, true, attrs["error"])
}

func TestAttributeFilter_DropsUnknownAndBlockedKeys(t *testing.T) {
	t.Parallel()

	attrs := filteredSpanAttrs(t, nil,
		attribute.String("document.path", "/home/someone/field.yaml"),
		attribute.String("document.kind", "complex"),
		attribute.String("user.id", "12345"),
		attribute.String("node.value", "66"),
	)

	assert.NotContains(t, attrs, "document.path")
	assert.NotContains(t, attrs, "user.id")
	assert.NotContains(t, attrs, "node.value")
	assert.Equal(t, "complex", attrs["document.kind"])
}

func TestAttributeFilter_WarnsWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	filteredSpanAttrs(t, logger, attribute.String("node.value", "66"))

	assert.Contains(t, buf.String(), "attribute blocked by filter")
	assert.Contains(t, buf.String(), "node.value")
}
