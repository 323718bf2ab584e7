package internal

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/lakeprobe/config"
	"github.com/beanbocchi/lakeprobe/internal/client/objectstore/datalake"
	"github.com/beanbocchi/lakeprobe/internal/client/objectstore/local"
	"github.com/beanbocchi/lakeprobe/internal/model"
)

func TestNewFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		cfg := &config.Config{
			Backend: config.Backend{Type: "local"},
			Local:   config.Local{Root: filepath.Join(t.TempDir(), "root")},
		}
		f, err := NewFactory(ctx, cfg, "", "")
		require.NoError(t, err)
		assert.IsType(t, &local.Factory{}, f)
		assert.DirExists(t, cfg.Local.Root)
	})

	t.Run("datalake", func(t *testing.T) {
		cfg := &config.Config{
			Backend:  config.Backend{Type: "datalake"},
			Datalake: config.Datalake{Endpoint: datalake.DefaultEndpoint},
		}
		f, err := NewFactory(ctx, cfg, "acct", "dGVzdC1rZXk=")
		require.NoError(t, err)
		assert.IsType(t, &datalake.Factory{}, f)
	})

	t.Run("datalake without account", func(t *testing.T) {
		cfg := &config.Config{
			Backend:  config.Backend{Type: "datalake"},
			Datalake: config.Datalake{Endpoint: datalake.DefaultEndpoint},
		}
		f, err := NewFactory(ctx, cfg, "", "dGVzdC1rZXk=")
		require.Error(t, err)
		assert.Nil(t, f)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewFactory(ctx, &config.Config{Backend: config.Backend{Type: "ftp"}}, "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown backend type")
	})
}

func TestProbeAndHistory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Setenv("LAKEPROBE_BACKEND_TYPE", "local")
	t.Setenv("LAKEPROBE_LOCAL_ROOT", filepath.Join(dir, "store"))
	t.Setenv("LAKEPROBE_HISTORY_PATH", filepath.Join(dir, "history.db"))
	_, err := config.Load("")
	require.NoError(t, err)

	err = Probe(ctx, ProbeParams{
		LocalPath:  filepath.Join(dir, "probe.bin"),
		Size:       10240,
		RemotePath: "fs1/test.bin",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, History(ctx, &out, HistoryParams{JSON: true}))
	assert.Contains(t, out.String(), `"remote_path": "fs1/test.bin"`)
	assert.Contains(t, out.String(), `"status": "completed"`)

	out.Reset()
	require.NoError(t, History(ctx, &out, HistoryParams{}))
	assert.Contains(t, out.String(), "fs1/test.bin")
}

func TestHistoryDisabled(t *testing.T) {
	t.Setenv("LAKEPROBE_HISTORY_PATH", "")
	_, err := config.Load("")
	require.NoError(t, err)

	var out bytes.Buffer
	err = History(context.Background(), &out, HistoryParams{JSON: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrIO))
	assert.Contains(t, out.String(), `"code": "io"`)
}
