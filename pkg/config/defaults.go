package config

// Simplification defaults.
const (
	DefaultThreshold = 1.0
	DefaultMaxPasses = 1
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint       = ""
	DefaultOTLPInsecure       = false
	DefaultSampleRatio        = 0.0
	DefaultMetricsOut         = ""
	DefaultShutdownTimeoutSec = 5
)

// Output defaults.
const (
	DefaultOutputFormat    = "json"
	DefaultOutputDirectory = ""
	DefaultOutputCompress  = false
)
