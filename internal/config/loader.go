package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "holderscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "HOLDERSCAN"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	// Use the global viper instance to ensure flag bindings work
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and sets
// defaults. The result is validated before being returned.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshalAndValidate()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshalAndValidate()
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// addConfigPaths registers the configuration file search locations.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "holderscan"))
	}
	l.v.AddConfigPath("/etc/holderscan")
}

// setupEnvironmentVariables configures the HOLDERSCAN_ env var mapping.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// setDefaults seeds viper with the values from DefaultConfig.
func (l *Loader) setDefaults() {
	def := DefaultConfig()

	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)

	l.v.SetDefault("pipeline.profile", def.Pipeline.Profile)
	l.v.SetDefault("pipeline.profiles_file", def.Pipeline.ProfilesFile)
	l.v.SetDefault("pipeline.limits.pole", def.Pipeline.Limits.Pole)
	l.v.SetDefault("pipeline.limits.rect_sign", def.Pipeline.Limits.RectSign)
	l.v.SetDefault("pipeline.limits.circle_sign", def.Pipeline.Limits.CircleSign)
	l.v.SetDefault("pipeline.overlaps.pole", def.Pipeline.Overlaps.Pole)
	l.v.SetDefault("pipeline.overlaps.rect_sign", def.Pipeline.Overlaps.RectSign)
	l.v.SetDefault("pipeline.overlaps.circle_sign", def.Pipeline.Overlaps.CircleSign)

	l.v.SetDefault("labeler.oracle_path", def.Labeler.OraclePath)

	l.v.SetDefault("router.high_cutoff", def.Router.HighCutoff)
	l.v.SetDefault("router.low_cutoff", def.Router.LowCutoff)

	l.v.SetDefault("output.format", def.Output.Format)
	l.v.SetDefault("output.overlay_dir", def.Output.OverlayDir)

	l.v.SetDefault("server.host", def.Server.Host)
	l.v.SetDefault("server.port", def.Server.Port)
	l.v.SetDefault("server.timeout_seconds", def.Server.TimeoutSeconds)
	l.v.SetDefault("server.max_upload_mb", def.Server.MaxUploadMB)

	l.v.SetDefault("batch.workers", def.Batch.Workers)
	l.v.SetDefault("batch.report_path", def.Batch.ReportPath)
}
