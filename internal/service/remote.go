package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/beanbocchi/lakeprobe/internal/model"
	"github.com/beanbocchi/lakeprobe/internal/utils/blake3"
)

const downloadTimedOut = "Download timed out"

// DeleteFile removes the remote object. It blocks on the backend directly.
func (s *Service) DeleteFile(ctx context.Context, remotePath string) error {
	client, err := s.client(remotePath)
	if err != nil {
		return normalize(err, uploadTimedOut)
	}
	if err := client.Delete(ctx); err != nil {
		return normalize(fmt.Errorf("delete file: %w", err), uploadTimedOut)
	}

	slog.Info("deleted remote file", "path", remotePath)
	return nil
}

// Verify downloads the remote object and compares its BLAKE3 digest with
// wantHash.
func (s *Service) Verify(ctx context.Context, remotePath, wantHash string) error {
	client, err := s.client(remotePath)
	if err != nil {
		return normalize(err, downloadTimedOut)
	}

	type digest struct {
		hash  string
		bytes int64
	}
	got, err := await(ctx, s, func(ctx context.Context) (digest, error) {
		body, err := client.Download(ctx)
		if err != nil {
			return digest{}, fmt.Errorf("download file: %w", err)
		}
		defer body.Close()

		sum, n, err := blake3.Compute(body)
		if err != nil {
			return digest{}, fmt.Errorf("read remote file: %w", err)
		}
		return digest{hash: sum, bytes: n}, nil
	})
	if err != nil {
		return normalize(err, downloadTimedOut)
	}

	if got.hash != wantHash {
		return model.ErrIO.Fmt(fmt.Sprintf("Verification failed for %s: remote hash %s, local hash %s", remotePath, got.hash, wantHash))
	}

	slog.Info("verified remote file", "path", remotePath, "bytes", got.bytes, "hash", got.hash)
	return nil
}
