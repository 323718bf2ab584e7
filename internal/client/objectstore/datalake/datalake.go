package datalake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/file"

	"github.com/beanbocchi/lakeprobe/internal/client/objectstore"
)

// DefaultEndpoint is expanded with the account name.
const DefaultEndpoint = "https://%s.dfs.core.windows.net"

type DatalakeConfig struct {
	// AccountName is the storage account, also used to expand Endpoint
	AccountName string
	// AccountKey is the shared-key secret for the account
	AccountKey string
	// Endpoint is a printf template taking the account name, or a fixed URL
	// If empty, DefaultEndpoint is used
	Endpoint string
	// ChunkSize and Concurrency are passed to the SDK transfer options, 0 keeps SDK defaults
	ChunkSize   int64
	Concurrency int
}

// Factory builds file clients that share one endpoint and credential.
type Factory struct {
	endpoint    string
	credential  *azdatalake.SharedKeyCredential
	chunkSize   int64
	concurrency int
}

func NewFactory(cfg DatalakeConfig) (*Factory, error) {
	if cfg.AccountName == "" {
		return nil, fmt.Errorf("account name is required")
	}
	if cfg.AccountKey == "" {
		return nil, fmt.Errorf("account key is required")
	}

	endpoint, err := endpointURL(cfg.Endpoint, cfg.AccountName)
	if err != nil {
		return nil, err
	}

	credential, err := azdatalake.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	return &Factory{
		endpoint:    endpoint,
		credential:  credential,
		chunkSize:   cfg.ChunkSize,
		concurrency: cfg.Concurrency,
	}, nil
}

func endpointURL(template, account string) (string, error) {
	if template == "" {
		template = DefaultEndpoint
	}
	endpoint := template
	if strings.Contains(template, "%s") {
		endpoint = fmt.Sprintf(template, account)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("endpoint must use http or https scheme")
	}
	return strings.TrimRight(endpoint, "/"), nil
}

// FileURL is the DFS URL of path under the factory endpoint.
func (f *Factory) FileURL(path objectstore.Path) string {
	segments := strings.Split(path.Name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return f.endpoint + "/" + url.PathEscape(path.Filesystem) + "/" + strings.Join(segments, "/")
}

func (f *Factory) NewClient(path objectstore.Path) (objectstore.Client, error) {
	fileURL := f.FileURL(path)
	client, err := file.NewClientWithSharedKeyCredential(fileURL, f.credential, nil)
	if err != nil {
		return nil, fmt.Errorf("build file client: %w", err)
	}

	return &ClientImpl{
		client:      client,
		url:         fileURL,
		chunkSize:   f.chunkSize,
		concurrency: f.concurrency,
	}, nil
}

func (f *Factory) Close() error {
	return nil
}

type ClientImpl struct {
	client      *file.Client
	url         string
	chunkSize   int64
	concurrency int
}

// UploadFile creates (or overwrites) the remote file and uploads file in parallel chunks
func (c *ClientImpl) UploadFile(ctx context.Context, f *os.File) error {
	if _, err := c.client.Create(ctx, nil); err != nil {
		return c.fail("create file", err)
	}

	err := c.client.UploadFile(ctx, f, c.fileOptions())
	if err != nil {
		return c.fail("upload file", err)
	}
	return nil
}

// UploadStream creates (or overwrites) the remote file and uploads everything read from content
func (c *ClientImpl) UploadStream(ctx context.Context, content io.Reader) error {
	if _, err := c.client.Create(ctx, nil); err != nil {
		return c.fail("create file", err)
	}

	err := c.client.UploadStream(ctx, content, c.streamOptions())
	if err != nil {
		return c.fail("upload stream", err)
	}
	return nil
}

func (c *ClientImpl) fileOptions() *file.UploadFileOptions {
	return &file.UploadFileOptions{
		ChunkSize:   c.chunkSize,
		Concurrency: uint16(c.concurrency),
		Progress: func(bytesTransferred int64) {
			slog.Debug("upload progress", "url", c.url, "bytes", bytesTransferred)
		},
	}
}

func (c *ClientImpl) streamOptions() *file.UploadStreamOptions {
	return &file.UploadStreamOptions{
		ChunkSize:   c.chunkSize,
		Concurrency: uint16(c.concurrency),
	}
}

func (c *ClientImpl) Download(ctx context.Context) (io.ReadCloser, error) {
	resp, err := c.client.DownloadStream(ctx, nil)
	if err != nil {
		return nil, c.fail("download file", err)
	}
	return resp.Body, nil
}

func (c *ClientImpl) Delete(ctx context.Context) error {
	if _, err := c.client.Delete(ctx, nil); err != nil {
		return c.fail("delete file", err)
	}
	return nil
}

func (c *ClientImpl) fail(op string, err error) error {
	slog.Error("datalake request failed", "op", op, "url", c.url, "code", ErrorCode(err), "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode returns the service error code carried by err, or "" when err did
// not come from a service response.
func ErrorCode(err error) string {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if respErr.ErrorCode != "" {
			return respErr.ErrorCode
		}
		return fmt.Sprintf("http_%d", respErr.StatusCode)
	}
	return ""
}
