package config

import (
	"github.com/ajitpratap0/blueprint/pkg/columnar"
	"github.com/ajitpratap0/blueprint/pkg/components"
	"github.com/ajitpratap0/blueprint/pkg/compression"
	"github.com/ajitpratap0/blueprint/pkg/errors"
)

// Output formats
const (
	FormatJSON = "json"
	FormatIPC  = "ipc"
)

// Config is the top-level configuration for blueprint tools.
type Config struct {
	// Encoder settings control how values become a column
	Encoder EncoderConfig `yaml:"encoder" toml:"encoder" json:"encoder"`

	// Output settings control how encoded columns are written
	Output OutputConfig `yaml:"output" toml:"output" json:"output"`

	// Observability settings for logging and metrics
	Observability ObservabilityConfig `yaml:"observability" toml:"observability" json:"observability"`
}

// EncoderConfig contains encoding settings.
type EncoderConfig struct {
	// ComponentType is the wire identity attached to encoded batches
	ComponentType string `yaml:"component_type" toml:"component_type" json:"component_type"`
	// NullToken is the CLI input token that stands for a null element
	NullToken string `yaml:"null_token" toml:"null_token" json:"null_token"`
	// BuilderPool enables reuse of Arrow builders across encodes
	BuilderPool bool `yaml:"builder_pool" toml:"builder_pool" json:"builder_pool"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	// Format selects the output format (json, ipc)
	Format string `yaml:"format" toml:"format" json:"format"`
	// IPCCompression selects Arrow IPC body compression (none, lz4, zstd)
	IPCCompression columnar.IPCCompression `yaml:"ipc_compression" toml:"ipc_compression" json:"ipc_compression"`
	// Compression selects whole-file compression
	Compression compression.Algorithm `yaml:"compression" toml:"compression" json:"compression"`
	// CompressionLevel sets compression ratio vs speed (1-9)
	CompressionLevel int `yaml:"compression_level" toml:"compression_level" json:"compression_level"`
}

// ObservabilityConfig contains logging and metrics settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`
	// LogEncoding selects the log encoding (json, console)
	LogEncoding string `yaml:"log_encoding" toml:"log_encoding" json:"log_encoding"`
	// Development enables development logging
	Development bool `yaml:"development" toml:"development" json:"development"`
	// EnableMetrics activates metrics collection
	EnableMetrics bool `yaml:"enable_metrics" toml:"enable_metrics" json:"enable_metrics"`
}

// NewDefaultConfig creates a Config with defaults for the LinkAxis component.
func NewDefaultConfig() *Config {
	return &Config{
		Encoder: EncoderConfig{
			ComponentType: components.LinkAxisComponentType,
			NullToken:     "null",
			BuilderPool:   true,
		},
		Output: OutputConfig{
			Format:           FormatJSON,
			IPCCompression:   columnar.IPCCompressionNone,
			Compression:      compression.None,
			CompressionLevel: int(compression.Default),
		},
		Observability: ObservabilityConfig{
			LogLevel:      "warn",
			LogEncoding:   "console",
			Development:   false,
			EnableMetrics: false,
		},
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if c.Encoder.ComponentType == "" {
		return configError("encoder.component_type", "component_type is required")
	}
	if c.Encoder.NullToken == "" {
		return configError("encoder.null_token", "null_token is required")
	}

	switch c.Output.Format {
	case FormatJSON, FormatIPC:
	default:
		return configError("output.format", "format must be json or ipc, got %q", c.Output.Format)
	}
	if err := c.Output.IPCCompression.Validate(); err != nil {
		return err
	}
	if err := c.Output.Compression.Validate(); err != nil {
		return err
	}
	if c.Output.CompressionLevel < 1 || c.Output.CompressionLevel > 9 {
		return configError("output.compression_level", "compression_level must be between 1 and 9, got %d", c.Output.CompressionLevel)
	}

	switch c.Observability.LogEncoding {
	case "json", "console":
	default:
		return configError("observability.log_encoding", "log_encoding must be json or console, got %q", c.Observability.LogEncoding)
	}
	return nil
}

// CompressionConfig returns the whole-file compressor settings.
func (o *OutputConfig) CompressionConfig() *compression.Config {
	return &compression.Config{
		Algorithm: o.Compression,
		Level:     compression.Level(o.CompressionLevel),
	}
}

func configError(field, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrorTypeConfig, format, args...).WithDetail("field", field)
}
