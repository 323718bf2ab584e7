package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beanbocchi/lakeprobe/internal/client/objectstore"
)

type LocalConfig struct {
	// Root is the base directory holding one subdirectory per filesystem (e.g., ./lakeprobe-data)
	Root string
}

// Factory hands out clients rooted at the same directory.
type Factory struct {
	root string
}

func NewFactory(cfg LocalConfig) (*Factory, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("local root is required")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create root: %w", err)
	}
	return &Factory{root: cfg.Root}, nil
}

func (f *Factory) NewClient(path objectstore.Path) (objectstore.Client, error) {
	full, err := f.fullPath(path)
	if err != nil {
		return nil, err
	}
	return &ClientImpl{path: full}, nil
}

func (f *Factory) Close() error {
	return nil
}

func (f *Factory) fullPath(path objectstore.Path) (string, error) {
	// prevent path traversal
	full := filepath.Join(f.root, filepath.Clean("/"+path.Filesystem), filepath.Clean("/"+path.Name))
	rel, err := filepath.Rel(f.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes root", path)
	}
	return full, nil
}

type ClientImpl struct {
	path string
}

func (c *ClientImpl) UploadFile(ctx context.Context, file *os.File) error {
	return c.write(file)
}

func (c *ClientImpl) UploadStream(ctx context.Context, content io.Reader) error {
	return c.write(content)
}

func (c *ClientImpl) write(content io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	//! Write to temp file first, then rename for filesystem atomicity because mid-write crash will leave a partial file.
	tmpPath := c.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	return nil
}

func (c *ClientImpl) Download(ctx context.Context) (io.ReadCloser, error) {
	file, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return file, nil
}

// Delete fails for a missing file, matching the remote backends.
func (c *ClientImpl) Delete(ctx context.Context) error {
	if err := os.Remove(c.path); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
