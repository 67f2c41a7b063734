package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &AppConfig{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_Fuse(t *testing.T) {
	cfg := &AppConfig{}
	ApplyDefaults(cfg)

	assert.Equal(t, uint32(0o600), cfg.Fuse.FileMask)
	assert.Equal(t, uint32(0o700), cfg.Fuse.DirMask)
	assert.Equal(t, DefaultFsType, cfg.Fuse.FsType)
}

func TestApplyDefaults_Filesystem(t *testing.T) {
	cfg := &AppConfig{}
	ApplyDefaults(cfg)

	assert.Equal(t, uint32(4096), cfg.Filesystem.BlockSize)
	assert.Zero(t, cfg.Filesystem.OperationTimeout)
	assert.Zero(t, cfg.Filesystem.RateLimit)
	assert.Zero(t, cfg.Filesystem.RateBurst)

	cfg = &AppConfig{Filesystem: FilesystemConfig{RateLimit: 25}}
	ApplyDefaults(cfg)
	assert.Equal(t, 25, cfg.Filesystem.RateBurst)

	cfg = &AppConfig{Filesystem: FilesystemConfig{RateLimit: 0.5}}
	ApplyDefaults(cfg)
	assert.Equal(t, 1, cfg.Filesystem.RateBurst)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &AppConfig{
		Logging:    LoggingConfig{Level: "warn", Format: "json", Output: "stderr"},
		Fuse:       FuseConfig{FileMask: 0o644, DirMask: 0o755},
		Filesystem: FilesystemConfig{BlockSize: 512},
		Metrics:    MetricsConfig{Port: 1234},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, uint32(0o644), cfg.Fuse.FileMask)
	assert.Equal(t, uint32(0o755), cfg.Fuse.DirMask)
	assert.Equal(t, uint32(512), cfg.Filesystem.BlockSize)
	assert.Equal(t, 1234, cfg.Metrics.Port)
}

func TestApplyDefaults_Catalogs(t *testing.T) {
	cfg := &AppConfig{
		Catalogs: []CatalogConfig{{
			Name:     "c1",
			Filesets: []FilesetConfig{{Name: "fs1", StorageLocation: "s3://b/p"}},
		}},
	}
	ApplyDefaults(cfg)

	require.Len(t, cfg.Catalogs, 1)
	assert.Equal(t, "fileset", cfg.Catalogs[0].Type)
	assert.NotNil(t, cfg.Catalogs[0].Properties)
	assert.Equal(t, "managed", cfg.Catalogs[0].Filesets[0].Type)
	assert.NotNil(t, cfg.Catalogs[0].Filesets[0].Properties)
	assert.NotNil(t, cfg.ExtendConfig)
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	require.NotNil(t, cfg)
	assert.NoError(t, Validate(cfg))
}
