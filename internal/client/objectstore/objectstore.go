package objectstore

import (
	"context"
	"io"
	"os"
)

// Client is scoped to a single remote file.
type Client interface {
	UploadFile(ctx context.Context, file *os.File) error
	UploadStream(ctx context.Context, content io.Reader) error
	Download(ctx context.Context) (io.ReadCloser, error)
	Delete(ctx context.Context) error
}

// Factory builds path-scoped clients. Shared state such as credentials or an
// open project lives in the factory, never in the clients it hands out.
type Factory interface {
	NewClient(path Path) (Client, error)
	Close() error
}
