package config

import (
	"fmt"

	"github.com/smartmap-tools/holderscan/internal/detector"
	"github.com/smartmap-tools/holderscan/internal/pipeline"
	"github.com/smartmap-tools/holderscan/internal/router"
)

// Config represents the complete configuration for the holderscan
// application. It supports loading from configuration files, environment
// variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Detection pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Label assignment configuration
	Labeler LabelerConfig `mapstructure:"labeler" yaml:"labeler" json:"labeler"`

	// Confidence routing cutoffs
	Router router.Config `mapstructure:"router" yaml:"router" json:"router"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// PipelineConfig contains detection pipeline settings.
type PipelineConfig struct {
	Profile      string                     `mapstructure:"profile" yaml:"profile" json:"profile"`
	ProfilesFile string                     `mapstructure:"profiles_file" yaml:"profiles_file" json:"profiles_file"`
	Limits       pipeline.ClassLimits       `mapstructure:"limits" yaml:"limits" json:"limits"`
	Overlaps     pipeline.OverlapThresholds `mapstructure:"overlaps" yaml:"overlaps" json:"overlaps"`
}

// LabelerConfig contains label assignment settings.
type LabelerConfig struct {
	OraclePath string `mapstructure:"oracle_path" yaml:"oracle_path" json:"oracle_path"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string `mapstructure:"host" yaml:"host" json:"host"`
	Port           int    `mapstructure:"port" yaml:"port" json:"port"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers    int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	ReportPath string `mapstructure:"report_path" yaml:"report_path" json:"report_path"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			Profile:  detector.ProfileNormal,
			Limits:   pipeline.DefaultLimits(),
			Overlaps: pipeline.DefaultOverlaps(),
		},
		Router: router.DefaultConfig(),
		Output: OutputConfig{Format: "json"},
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			TimeoutSeconds: 30,
			MaxUploadMB:    10,
		},
		Batch: BatchConfig{Workers: 0},
	}
}

// Validate checks configuration consistency. Profile names are resolved
// eagerly so a typo fails at startup, never mid-run.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.Pipeline.ProfilesFile == "" {
		if _, err := detector.ProfileByName(c.Pipeline.Profile); err != nil {
			return err
		}
	}
	if c.Pipeline.Limits.Pole < 0 || c.Pipeline.Limits.RectSign < 0 || c.Pipeline.Limits.CircleSign < 0 {
		return fmt.Errorf("negative class limit in pipeline config")
	}

	if err := c.Router.Validate(); err != nil {
		return err
	}

	switch c.Output.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid output format %q (want json or text)", c.Output.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size %d MB", c.Server.MaxUploadMB)
	}
	return nil
}
