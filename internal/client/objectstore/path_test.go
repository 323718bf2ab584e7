package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		want   Path
	}{
		{"leading separator", "/container/dir/file.txt", Path{"container", "dir/file.txt"}},
		{"no leading separator", "container/dir/file.txt", Path{"container", "dir/file.txt"}},
		{"single level", "container/file.txt", Path{"container", "file.txt"}},
		{"fs1", "fs1/test.bin", Path{"fs1", "test.bin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.remote)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, remote := range []string{"container", "/container", "", "/", "//file", "container/"} {
			_, err := ParsePath(remote)
			assert.ErrorIs(t, err, ErrInvalidPath, remote)
		}
	})

	t.Run("string", func(t *testing.T) {
		p, err := ParsePath("/container/dir/file.txt")
		require.NoError(t, err)
		assert.Equal(t, "container/dir/file.txt", p.String())
	})
}
