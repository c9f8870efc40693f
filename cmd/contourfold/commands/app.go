// Package commands implements the contourfold subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/contourfold/pkg/config"
	"github.com/Sumatoshi-tech/contourfold/pkg/contour"
	"github.com/Sumatoshi-tech/contourfold/pkg/folded"
	"github.com/Sumatoshi-tech/contourfold/pkg/observability"
	"github.com/Sumatoshi-tech/contourfold/pkg/simplify"
	"github.com/Sumatoshi-tech/contourfold/pkg/treeio"
	"github.com/Sumatoshi-tech/contourfold/pkg/version"
)

const (
	configFlag     = "config"
	verboseFlag    = "verbose"
	quietFlag      = "quiet"
	logJSONFlag    = "log-json"
	metricsOutFlag = "metrics-out"

	thresholdFlag = "threshold"
	passesFlag    = "passes"
)

// App is the state shared by every subcommand of one invocation.
type App struct {
	configPath string
	verbose    bool
	quiet      bool
	logJSON    bool
	metricsOut string

	cfg       *config.Config
	providers observability.Providers
	ready     bool
}

// setup loads the configuration and starts telemetry. Flags override the
// configuration file, which overrides the defaults.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return err
	}

	switch {
	case a.quiet:
		level = slog.LevelError
	case a.verbose:
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.DebugTrace = a.verbose
	obsCfg.LogLevel = level
	obsCfg.LogJSON = a.logJSON || cfg.Logging.Format == config.LogFormatJSON
	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.MetricsOut = cfg.Telemetry.MetricsOut
	obsCfg.ShutdownTimeoutSec = cfg.Telemetry.ShutdownTimeoutSec

	if a.metricsOut != "" {
		obsCfg.MetricsOut = a.metricsOut
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	a.cfg = cfg
	a.providers = providers
	a.ready = true

	return nil
}

// Close flushes telemetry. It is a no-op when setup never ran.
func (a *App) Close(ctx context.Context) error {
	if !a.ready {
		return nil
	}

	if err := a.providers.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown observability: %w", err)
	}

	return nil
}

// run executes body inside a command span and records its outcome.
func (a *App) run(cmd *cobra.Command, name string, body func(ctx context.Context) error) error {
	ctx, span := a.providers.Tracer.Start(cmd.Context(), "contourfold."+name,
		trace.WithAttributes(attribute.String("command.name", name)))
	defer span.End()

	done := a.providers.Commands.Track(ctx, name)

	err := body(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("error", true))
	}

	done(err)

	return err
}

func (a *App) logger() *slog.Logger {
	return a.providers.Logger
}

// threshold returns the --threshold flag when set, else the configured one.
func (a *App) threshold(cmd *cobra.Command, flagValue float64) float64 {
	if cmd.Flags().Changed(thresholdFlag) {
		return flagValue
	}

	return a.cfg.Simplify.Threshold
}

func (a *App) passes(cmd *cobra.Command, flagValue int) int {
	if cmd.Flags().Changed(passesFlag) {
		return flagValue
	}

	return a.cfg.Simplify.MaxPasses
}

// loadTree reads a document and builds its reduced contour tree.
func (a *App) loadTree(ctx context.Context, path string) (*contour.Tree, error) {
	doc, err := treeio.Load(path)
	if err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("document.kind", doc.Kind),
		attribute.Int("document.nodes", len(doc.Nodes)),
	)

	tree, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	a.logger().DebugContext(ctx, "loaded document",
		"path", path, "kind", doc.Kind, "nodes", tree.NumberOfNodes(), "edges", tree.NumberOfEdges())

	return tree, nil
}

// simplified loads path and simplifies it at threshold, repeating up to
// passes times while a pass still collapses leaves. Passes must be positive.
func (a *App) simplified(
	ctx context.Context, path string, threshold float64, passes int,
) (*folded.Tree, simplify.Stats, error) {
	if passes <= 0 {
		return nil, simplify.Stats{}, fmt.Errorf("%w: %d", config.ErrInvalidPasses, passes)
	}

	source, err := a.loadTree(ctx, path)
	if err != nil {
		return nil, simplify.Stats{}, err
	}

	simplifier, err := simplify.New(threshold,
		simplify.WithLogger(a.logger()),
		simplify.WithMetrics(a.providers.Fold),
		simplify.WithTracer(a.providers.Tracer),
	)
	if err != nil {
		return nil, simplify.Stats{}, err
	}

	tree := folded.New(source)

	var total simplify.Stats

	for pass := range passes {
		stats := simplifier.Simplify(ctx, tree)
		total = addStats(total, stats)

		if stats.Collapsed == 0 {
			a.logger().DebugContext(ctx, "simplify converged", "pass", pass+1)

			break
		}
	}

	return tree, total, nil
}

func addStats(a, b simplify.Stats) simplify.Stats {
	return simplify.Stats{
		Popped:    a.Popped + b.Popped,
		Collapsed: a.Collapsed + b.Collapsed,
		Reduced:   a.Reduced + b.Reduced,
		Preserved: a.Preserved + b.Preserved,
		Requeued:  a.Requeued + b.Requeued,
	}
}

// ErrNoOutput is returned when a command that writes a file was given no path.
var ErrNoOutput = errors.New("output path is required")

func writeOut(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
