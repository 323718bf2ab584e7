package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI with args and returns the exit code and stderr output.
func runApp(t *testing.T, args ...string) (int, string) {
	t.Helper()

	var stderr bytes.Buffer
	code := 0

	origWriter, origExiter := cli.ErrWriter, cli.OsExiter
	cli.ErrWriter = &stderr
	cli.OsExiter = func(c int) { code = c }
	t.Cleanup(func() {
		cli.ErrWriter, cli.OsExiter = origWriter, origExiter
	})

	app := newApp()
	app.ErrWriter = &stderr
	if err := app.Run(append([]string{"lakeprobe"}, args...)); err != nil && code == 0 {
		code = 1
	}
	return code, stderr.String()
}

func useLocalBackend(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LAKEPROBE_BACKEND_TYPE", "local")
	t.Setenv("LAKEPROBE_LOCAL_ROOT", filepath.Join(dir, "store"))
	t.Setenv("LAKEPROBE_HISTORY_PATH", "")
	return dir
}

func TestArgumentCount(t *testing.T) {
	useLocalBackend(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments"},
		{name: "four arguments", args: []string{"acct", "key", "f.bin", "10"}},
		{name: "six arguments", args: []string{"acct", "key", "f.bin", "10", "fs1/x", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stderr := runApp(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, usage)
		})
	}
}

func TestInvalidSize(t *testing.T) {
	dir := useLocalBackend(t)
	localPath := filepath.Join(dir, "f.bin")

	for _, size := range []string{"-1", "abc"} {
		t.Run(size, func(t *testing.T) {
			code, stderr := runApp(t, "acct", "key", localPath, size, "fs1/x")
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, "invalid localFileSize")
			assert.NoFileExists(t, localPath)
		})
	}
}

func TestLocalRun(t *testing.T) {
	dir := useLocalBackend(t)
	localPath := filepath.Join(dir, "f.bin")

	code, stderr := runApp(t, "acct", "key", localPath, "10240", "fs1/test.bin")
	require.Equal(t, 0, code, stderr)
	assert.NoFileExists(t, localPath)
	assert.NoFileExists(t, filepath.Join(dir, "store", "fs1", "test.bin"))
}

func TestInvalidRemotePathExits(t *testing.T) {
	dir := useLocalBackend(t)
	localPath := filepath.Join(dir, "f.bin")

	code, stderr := runApp(t, "acct", "key", localPath, "10", "no-separator")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid remote path")
	assert.NoFileExists(t, localPath)
}

func TestHistoryRejectsProbeArguments(t *testing.T) {
	useLocalBackend(t)

	code, stderr := runApp(t, "history", "tok", "./f.bin", "10", "fs1/x")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, usage)
}

func TestLoadDotEnv(t *testing.T) {
	var logs bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })

	dir := t.TempDir()

	t.Run("missing file is silent", func(t *testing.T) {
		logs.Reset()
		loadDotEnv(filepath.Join(dir, "missing.env"))
		assert.Empty(t, logs.String())
	})

	t.Run("unreadable file warns", func(t *testing.T) {
		logs.Reset()
		// A directory cannot be parsed as an env file
		loadDotEnv(dir)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "could not load .env file")
	})

	t.Run("values are exported", func(t *testing.T) {
		path := filepath.Join(dir, "app.env")
		require.NoError(t, os.WriteFile(path, []byte("LAKEPROBE_DOTENV_TEST=yes\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("LAKEPROBE_DOTENV_TEST") })

		loadDotEnv(path)
		assert.Equal(t, "yes", os.Getenv("LAKEPROBE_DOTENV_TEST"))
	})
}
