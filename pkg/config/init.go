package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is written by InitConfig. Masks are in decimal because
// YAML readers disagree on leading-zero octal literals.
const defaultConfigTemplate = `# filesetfs Configuration File
#
# Values can be overridden with FILESETFS_* environment variables,
# e.g. FILESETFS_LOGGING_LEVEL=DEBUG.

logging:
  # DEBUG, INFO, WARN or ERROR
  level: INFO
  # text or json
  format: text
  # stdout, stderr or a file path (files are rotated)
  output: stdout

fuse:
  file_mask: 384   # 0600
  dir_mask: 448    # 0700
  fs_type: filesetfs

filesystem:
  block_size: 4096
  # Per-operation backend timeout, 0s disables it
  operation_timeout: 0s
  # Backend operations per second, 0 disables rate limiting
  rate_limit: 0
  rate_burst: 0

metrics:
  enabled: false
  port: 9090

# Catalogs and filesets served without a metadata server
catalogs:
  - name: example
    provider: hadoop
    properties:
      s3-region: us-east-1
    filesets:
      - name: data
        storage_location: s3://example-bucket/data

# Backend settings, namespaced by backend prefix (s3-, mem-, badger-)
extend_config:
  s3-access_key_id: ""
  s3-secret_access_key: ""
`

// InitConfig writes a default configuration file to the default location.
//
// Parameters:
//   - force: overwrite an existing file
//
// Returns:
//   - string: path of the written file
//   - error: if the file exists (and force is false) or cannot be written
func InitConfig(force bool) (string, error) {
	return InitConfigAt(GetDefaultConfigPath(), force)
}

// InitConfigAt writes a default configuration file to path.
func InitConfigAt(path string, force bool) (string, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
