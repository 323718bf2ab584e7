package blake3

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	sum, n, err := Compute(strings.NewReader("lakeprobe"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Len(t, sum, 64)

	h := New()
	_, err = io.Copy(h, strings.NewReader("lakeprobe"))
	require.NoError(t, err)
	assert.Equal(t, sum, Hex(h))

	other, _, err := Compute(strings.NewReader("lakeprobe!"))
	require.NoError(t, err)
	assert.NotEqual(t, sum, other)
}

func TestComputeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(path, []byte("lakeprobe"), 0o644))

	got, err := ComputeFile(path)
	require.NoError(t, err)
	want, _, _ := Compute(strings.NewReader("lakeprobe"))
	assert.Equal(t, want, got)

	_, err = ComputeFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
