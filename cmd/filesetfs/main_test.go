package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, location string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `logging:
  level: ERROR
  output: stderr
catalogs:
  - name: local
    filesets:
      - name: scratch
        storage_location: ` + location + `
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_FilesetCommands(t *testing.T) {
	cfgPath := writeTestConfig(t, "mem://cli-test/root")

	_, err := runCLI(t, "", "-config", cfgPath, "mkdir", "/docs")
	require.NoError(t, err)

	out, err := runCLI(t, "hello from stdin", "-config", cfgPath, "put", "/docs/hello.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "16 bytes written to /docs/hello.txt")

	out, err = runCLI(t, "", "-config", cfgPath, "cat", "/docs/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello from stdin", out)

	out, err = runCLI(t, "", "-config", cfgPath, "ls", "/docs")
	require.NoError(t, err)
	assert.Contains(t, out, "hello.txt")

	out, err = runCLI(t, "", "-config", cfgPath, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "docs/")

	out, err = runCLI(t, "", "-config", cfgPath, "stat", "/docs/hello.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Type:     file")
	assert.Contains(t, out, "Size:     16")

	_, err = runCLI(t, "", "-config", cfgPath, "rmdir", "/docs")
	assert.True(t, filesystem.IsCode(err, filesystem.ErrNotEmpty))

	_, err = runCLI(t, "", "-config", cfgPath, "rm", "/docs/hello.txt")
	require.NoError(t, err)
	_, err = runCLI(t, "", "-config", cfgPath, "rmdir", "/docs")
	require.NoError(t, err)

	_, err = runCLI(t, "", "-config", cfgPath, "stat", "/docs")
	assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))
}

func TestRun_PutFromFile(t *testing.T) {
	cfgPath := writeTestConfig(t, "mem://cli-put")
	src := filepath.Join(t.TempDir(), "local.bin")
	require.NoError(t, os.WriteFile(src, []byte("local content"), 0o600))

	_, err := runCLI(t, "", "-config", cfgPath, "put", "/copy.bin", src)
	require.NoError(t, err)

	out, err := runCLI(t, "", "-config", cfgPath, "cat", "/copy.bin")
	require.NoError(t, err)
	assert.Equal(t, "local content", out)
}

func TestRun_Errors(t *testing.T) {
	cfgPath := writeTestConfig(t, "mem://cli-errors")

	_, err := runCLI(t, "")
	assert.EqualError(t, err, "no command given")

	_, err = runCLI(t, "", "frobnicate")
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)

	_, err = runCLI(t, "", "-config", cfgPath, "cat")
	assert.ErrorContains(t, err, "path argument is required")

	_, err = runCLI(t, "", "-config", cfgPath, "-catalog", "nope", "ls")
	assert.ErrorContains(t, err, "catalog nope is not configured")

	unsupported := writeTestConfig(t, "ftp://host/path")
	_, err = runCLI(t, "", "-config", unsupported, "ls")
	assert.True(t, filesystem.IsCode(err, filesystem.ErrNotSupported))
}

func TestRun_Schemes(t *testing.T) {
	out, err := runCLI(t, "", "schemes")
	require.NoError(t, err)
	for _, scheme := range []string{"badger", "mem", "s3", "s3a"} {
		assert.Contains(t, out, scheme)
	}
}

func TestRun_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := runCLI(t, "", "-config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = runCLI(t, "", "-config", path, "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, "", "-config", path, "init", "-force")
	assert.NoError(t, err)
}
