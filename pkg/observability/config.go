// Package observability provides OpenTelemetry tracing, metrics and
// structured logging for the contourfold command line.
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies how the binary was launched.
type AppMode string

// ModeCLI is the command line mode.
const ModeCLI AppMode = "cli"

const (
	defaultServiceName        = "contourfold"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment, attached to logs and the
	// resource when set.
	Environment string

	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export
	// and the providers become no-op.
	OTLPEndpoint string

	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// DebugTrace forces every trace to be sampled and logs attributes the
	// span filter drops.
	DebugTrace bool

	// SampleRatio is the root sampling ratio. Zero samples everything.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// MetricsOut is a file that receives a Prometheus text dump of every
	// metric at shutdown. Empty disables the dump.
	MetricsOut string

	ShutdownTimeoutSec int
}

// DefaultConfig returns the zero-setup configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
