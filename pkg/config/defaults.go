package config

import "strings"

const (
	// DefaultFileMask is the permission mode reported for regular files
	DefaultFileMask = 0o600

	// DefaultDirMask is the permission mode reported for directories
	DefaultDirMask = 0o700

	// DefaultBlockSize is the block size reported in file attributes
	DefaultBlockSize = 4096

	// DefaultFsType is the filesystem type name reported to the kernel
	DefaultFsType = "filesetfs"

	// DefaultMetricsPort is the port of the /metrics endpoint
	DefaultMetricsPort = 9090
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", nil) are replaced with defaults
//   - Explicit values are preserved
//   - Backend defaults are handled by the storage operator services
func ApplyDefaults(cfg *AppConfig) {
	applyLoggingDefaults(&cfg.Logging)
	applyFuseDefaults(&cfg.Fuse)
	applyFilesystemDefaults(&cfg.Filesystem)
	applyMetricsDefaults(&cfg.Metrics)

	for i := range cfg.Catalogs {
		applyCatalogDefaults(&cfg.Catalogs[i])
	}

	if cfg.ExtendConfig == nil {
		cfg.ExtendConfig = make(map[string]string)
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyFuseDefaults(cfg *FuseConfig) {
	if cfg.FileMask == 0 {
		cfg.FileMask = DefaultFileMask
	}
	if cfg.DirMask == 0 {
		cfg.DirMask = DefaultDirMask
	}
	if cfg.FsType == "" {
		cfg.FsType = DefaultFsType
	}
}

func applyFilesystemDefaults(cfg *FilesystemConfig) {
	if cfg.BlockSize == 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	// A burst of zero would reject every request once a rate limit is set
	if cfg.RateLimit > 0 && cfg.RateBurst == 0 {
		cfg.RateBurst = max(1, int(cfg.RateLimit))
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

func applyCatalogDefaults(cfg *CatalogConfig) {
	if cfg.Type == "" {
		cfg.Type = "fileset"
	}
	if cfg.Properties == nil {
		cfg.Properties = make(map[string]string)
	}
	for i := range cfg.Filesets {
		fileset := &cfg.Filesets[i]
		if fileset.Type == "" {
			fileset.Type = "managed"
		}
		if fileset.Properties == nil {
			fileset.Properties = make(map[string]string)
		}
	}
}

// GetDefaultConfig returns an AppConfig with all defaults applied.
//
// This is used by the init command to seed a new configuration file and by
// tests that need a valid baseline.
func GetDefaultConfig() *AppConfig {
	cfg := &AppConfig{}
	ApplyDefaults(cfg)
	return cfg
}
