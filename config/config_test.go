package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/lakeprobe/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "datalake", cfg.Backend.Type)
	assert.Equal(t, "https://%s.dfs.core.windows.net", cfg.Datalake.Endpoint)
	assert.Equal(t, 300*time.Second, cfg.Transfer.Timeout)
	assert.Equal(t, time.Second, cfg.Transfer.ProgressInterval)
	assert.Equal(t, 10240, cfg.Generator.ChunkSize)
	assert.False(t, cfg.Generator.ExactSize)
	assert.False(t, cfg.Verify.Enabled)
	assert.Empty(t, cfg.History.Path)

	assert.Same(t, cfg, GetConfig())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lakeprobe.yaml")
	err := os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
backend:
  type: local
local:
  root: /tmp/lake
transfer:
  timeout: 30s
  chunkSize: 4194304
  concurrency: 8
generator:
  exactSize: true
verify:
  enabled: true
history:
  path: /tmp/lakeprobe.db
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "local", cfg.Backend.Type)
	assert.Equal(t, "/tmp/lake", cfg.Local.Root)
	assert.Equal(t, 30*time.Second, cfg.Transfer.Timeout)
	assert.Equal(t, int64(4194304), cfg.Transfer.ChunkSize)
	assert.Equal(t, 8, cfg.Transfer.Concurrency)
	assert.Equal(t, 10240, cfg.Generator.ChunkSize)
	assert.True(t, cfg.Generator.ExactSize)
	assert.True(t, cfg.Verify.Enabled)
	assert.Equal(t, "/tmp/lakeprobe.db", cfg.History.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LAKEPROBE_BACKEND_TYPE", "storj")
	t.Setenv("LAKEPROBE_TRANSFER_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "storj", cfg.Backend.Type)
	assert.Equal(t, 5*time.Second, cfg.Transfer.Timeout)
}

func TestLoadInvalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("LAKEPROBE_BACKEND_TYPE", "s3")
		_, err := Load("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrValidation))
		assert.Contains(t, err.Error(), "backend.type")
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("LAKEPROBE_LOG_LEVEL", "verbose")
		_, err := Load("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrValidation))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})
}
