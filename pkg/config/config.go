// Package config loads contourfold settings from defaults, an optional YAML
// file and CONTOURFOLD_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidThreshold    = errors.New("persistence threshold must be positive")
	ErrInvalidPasses       = errors.New("max passes must be positive")
	ErrInvalidLogLevel     = errors.New("unknown log level")
	ErrInvalidLogFormat    = errors.New("log format must be text or json")
	ErrInvalidOutputFormat = errors.New("output format must be json or gob")
	ErrInvalidSampleRatio  = errors.New("sample ratio must be within [0, 1]")
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const envPrefix = "CONTOURFOLD"

// Config holds all contourfold configuration.
type Config struct {
	Simplify  SimplifyConfig  `mapstructure:"simplify"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Output    OutputConfig    `mapstructure:"output"`
}

// SimplifyConfig controls persistence simplification.
type SimplifyConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	// MaxPasses bounds how often simplify reruns while it still changes the
	// tree.
	MaxPasses int `mapstructure:"max_passes"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint       string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders        string  `mapstructure:"otlp_headers"`
	OTLPInsecure       bool    `mapstructure:"otlp_insecure"`
	SampleRatio        float64 `mapstructure:"sample_ratio"`
	MetricsOut         string  `mapstructure:"metrics_out"`
	ShutdownTimeoutSec int     `mapstructure:"shutdown_timeout_sec"`
}

// OutputConfig controls snapshot files.
type OutputConfig struct {
	Format    string `mapstructure:"format"`
	Directory string `mapstructure:"directory"`
	Compress  bool   `mapstructure:"compress"`
}

// LoadConfig loads configuration from configPath, or from contourfold.yaml
// in the usual places when configPath is empty, then applies the
// environment. A missing default file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("contourfold")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/contourfold")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("simplify.threshold", DefaultThreshold)
	viperCfg.SetDefault("simplify.max_passes", DefaultMaxPasses)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.metrics_out", DefaultMetricsOut)
	viperCfg.SetDefault("telemetry.shutdown_timeout_sec", DefaultShutdownTimeoutSec)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.directory", DefaultOutputDirectory)
	viperCfg.SetDefault("output.compress", DefaultOutputCompress)
}

// Validate checks every section. A non-positive threshold is rejected, never
// clamped.
func (c *Config) Validate() error {
	if !(c.Simplify.Threshold > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.Simplify.Threshold)
	}

	if c.Simplify.MaxPasses <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPasses, c.Simplify.MaxPasses)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if c.Logging.Format != LogFormatText && c.Logging.Format != LogFormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Output.Format != "json" && c.Output.Format != "gob" {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

// SlogLevel parses Level as an slog level name.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}
