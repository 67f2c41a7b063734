package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig represents the complete filesetfs configuration.
//
// This structure captures all configurable aspects of a fileset mount:
//   - Logging configuration
//   - FUSE-facing permissions
//   - Filesystem tuning (block size, per-operation timeout, rate limiting)
//   - Metrics exposition
//   - Static catalog and fileset definitions
//   - Backend-specific settings (extend_config)
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (FILESETFS_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
//
// Backend Settings Pattern:
// Every backend reads its own settings from ExtendConfig using a key prefix
// ("s3-", "mem-", "badger-"). The prefix is stripped before the settings reach
// the storage operator, so "s3-endpoint" becomes the operator key "endpoint".
type AppConfig struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Fuse holds permissions presented to the kernel
	Fuse FuseConfig `mapstructure:"fuse" yaml:"fuse"`

	// Filesystem contains filesystem-wide tuning
	Filesystem FilesystemConfig `mapstructure:"filesystem" yaml:"filesystem"`

	// Metrics controls Prometheus metrics exposition
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Catalogs defines the catalogs and filesets known without a metadata server
	Catalogs []CatalogConfig `mapstructure:"catalogs" yaml:"catalogs" validate:"dive"`

	// ExtendConfig holds flat backend settings, namespaced by backend prefix
	ExtendConfig map[string]string `mapstructure:"extend_config" yaml:"extend_config"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// FuseConfig holds the permission bits reported for files and directories.
type FuseConfig struct {
	// FileMask is the permission mode of regular files (e.g., 0600)
	FileMask uint32 `mapstructure:"file_mask" yaml:"file_mask" validate:"lte=511"` // 511 = 0777 in decimal

	// DirMask is the permission mode of directories (e.g., 0700)
	DirMask uint32 `mapstructure:"dir_mask" yaml:"dir_mask" validate:"lte=511"`

	// FsType is the filesystem type name reported to the kernel
	FsType string `mapstructure:"fs_type" yaml:"fs_type"`
}

// FilesystemConfig contains filesystem-wide settings.
type FilesystemConfig struct {
	// BlockSize is the block size reported in file attributes
	BlockSize uint32 `mapstructure:"block_size" yaml:"block_size" validate:"gt=0"`

	// OperationTimeout bounds every backend operation (0 disables the limit)
	OperationTimeout time.Duration `mapstructure:"operation_timeout" yaml:"operation_timeout" validate:"gte=0"`

	// RateLimit is the maximum number of backend operations per second (0 disables)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`

	// RateBurst is the token bucket burst size used with RateLimit
	RateBurst int `mapstructure:"rate_burst" yaml:"rate_burst" validate:"gte=0"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns metrics collection and the HTTP endpoint on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the /metrics endpoint
	Port int `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// CatalogConfig defines a catalog served by the static catalog client.
type CatalogConfig struct {
	Name     string `mapstructure:"name" yaml:"name" validate:"required"`
	Type     string `mapstructure:"type" yaml:"type"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	Comment  string `mapstructure:"comment" yaml:"comment"`

	// Properties holds catalog-level settings such as "s3-region" or "s3-endpoint"
	Properties map[string]string `mapstructure:"properties" yaml:"properties"`

	Filesets []FilesetConfig `mapstructure:"filesets" yaml:"filesets" validate:"dive"`
}

// FilesetConfig defines a fileset inside a catalog.
type FilesetConfig struct {
	Name    string `mapstructure:"name" yaml:"name" validate:"required"`
	Type    string `mapstructure:"type" yaml:"type"`
	Comment string `mapstructure:"comment" yaml:"comment"`

	// StorageLocation is the URI of the fileset root (e.g., s3://bucket/path)
	StorageLocation string `mapstructure:"storage_location" yaml:"storage_location" validate:"required"`

	Properties map[string]string `mapstructure:"properties" yaml:"properties"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FILESETFS_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *AppConfig: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: FILESETFS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("FILESETFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"filesystem.operation_timeout", "filesystem.rate_limit", "filesystem.rate_burst",
		"metrics.enabled", "metrics.port",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/filesetfs/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// Missing config is acceptable - use defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "filesetfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "filesetfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
