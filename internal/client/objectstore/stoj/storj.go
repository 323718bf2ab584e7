package stoj

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"storj.io/uplink"

	"github.com/beanbocchi/lakeprobe/internal/client/objectstore"
)

type StorjConfig struct {
	// AccessGrant is the Storj access grant string
	AccessGrant string
}

// Factory owns the project connection. Filesystems map to buckets and are
// ensured once per factory.
type Factory struct {
	project *uplink.Project

	mu      sync.Mutex
	buckets map[string]struct{}
}

// NewFactory opens a Storj project from an access grant
func NewFactory(ctx context.Context, cfg StorjConfig) (*Factory, error) {
	if cfg.AccessGrant == "" {
		return nil, fmt.Errorf("access grant is required")
	}

	// Parse the access grant
	access, err := uplink.ParseAccess(cfg.AccessGrant)
	if err != nil {
		return nil, fmt.Errorf("parse access grant: %w", err)
	}

	project, err := uplink.OpenProject(ctx, access)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}

	return &Factory{
		project: project,
		buckets: make(map[string]struct{}),
	}, nil
}

func (f *Factory) NewClient(path objectstore.Path) (objectstore.Client, error) {
	return &ClientImpl{factory: f, bucket: path.Filesystem, key: path.Name}, nil
}

// Close closes the Storj project connection
func (f *Factory) Close() error {
	if f.project != nil {
		return f.project.Close()
	}
	return nil
}

func (f *Factory) ensureBucket(ctx context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.buckets[bucket]; ok {
		return nil
	}
	if _, err := f.project.EnsureBucket(ctx, bucket); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	f.buckets[bucket] = struct{}{}
	return nil
}

type ClientImpl struct {
	factory *Factory
	bucket  string
	key     string
}

// UploadFile uploads the whole file as one object
func (c *ClientImpl) UploadFile(ctx context.Context, file *os.File) error {
	return c.upload(ctx, file)
}

// UploadStream uploads everything read from content as one object
func (c *ClientImpl) UploadStream(ctx context.Context, content io.Reader) error {
	return c.upload(ctx, content)
}

func (c *ClientImpl) upload(ctx context.Context, content io.Reader) error {
	if err := c.factory.ensureBucket(ctx, c.bucket); err != nil {
		return err
	}

	upload, err := c.factory.project.UploadObject(ctx, c.bucket, c.key, nil)
	if err != nil {
		return fmt.Errorf("initiate upload: %w", err)
	}

	// Copy data to upload
	_, err = io.Copy(upload, content)
	if err != nil {
		upload.Abort()
		return fmt.Errorf("write data: %w", err)
	}

	// Commit the upload
	err = upload.Commit()
	if err != nil {
		return fmt.Errorf("commit upload: %w", err)
	}

	return nil
}

// Download downloads an object from Storj
func (c *ClientImpl) Download(ctx context.Context) (io.ReadCloser, error) {
	download, err := c.factory.project.DownloadObject(ctx, c.bucket, c.key, nil)
	if err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}

	return download, nil
}

// Delete deletes an object from Storj
func (c *ClientImpl) Delete(ctx context.Context) error {
	_, err := c.factory.project.DeleteObject(ctx, c.bucket, c.key)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
