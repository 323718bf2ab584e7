package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/beanbocchi/lakeprobe/internal/utils/blake3"
	"github.com/beanbocchi/lakeprobe/internal/utils/progressr"
)

const uploadTimedOut = "Upload timed out"

// UploadFile uploads the local file in one whole-file transfer, overwriting
// the remote object.
func (s *Service) UploadFile(ctx context.Context, localPath, remotePath string) error {
	_, err := s.uploadFile(ctx, localPath, remotePath)
	return err
}

func (s *Service) uploadFile(ctx context.Context, localPath, remotePath string) (int64, error) {
	client, err := s.client(remotePath)
	if err != nil {
		return 0, normalize(err, uploadTimedOut)
	}

	size, err := await(ctx, s, func(ctx context.Context) (int64, error) {
		// The file belongs to the transfer, it may outlive a timed out wait
		f, err := os.Open(localPath)
		if err != nil {
			return 0, fmt.Errorf("open local file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return 0, fmt.Errorf("stat local file: %w", err)
		}
		if err := client.UploadFile(ctx, f); err != nil {
			return 0, fmt.Errorf("upload file: %w", err)
		}
		return info.Size(), nil
	})
	if err != nil {
		return 0, normalize(err, uploadTimedOut)
	}

	slog.Info("uploaded file", "path", remotePath, "bytes", size)
	return size, nil
}

// UploadStream uploads the local file as a byte stream, overwriting the
// remote object.
func (s *Service) UploadStream(ctx context.Context, localPath, remotePath string) error {
	_, err := s.uploadStream(ctx, localPath, remotePath, nil)
	return err
}

type streamResult struct {
	bytes int64
	hash  string
}

// uploadStream hashes the stream while it is sent and samples its progress
// into report when given.
func (s *Service) uploadStream(ctx context.Context, localPath, remotePath string, report func(current int64, progress float64)) (streamResult, error) {
	client, err := s.client(remotePath)
	if err != nil {
		return streamResult{}, normalize(err, uploadTimedOut)
	}

	result, err := await(ctx, s, func(ctx context.Context) (streamResult, error) {
		f, err := os.Open(localPath)
		if err != nil {
			return streamResult{}, fmt.Errorf("open local file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return streamResult{}, fmt.Errorf("stat local file: %w", err)
		}

		// Compute hash while uploading using TeeReader
		hasher := blake3.New()
		progressReader := progressr.NewReader(io.TeeReader(f, hasher), info.Size())

		stop := progressReader.Watch(ctx, s.progressInterval, func(current int64, progress float64) {
			slog.Debug("upload progress", "path", remotePath, "bytes", current, "progress", progress)
			if report != nil {
				report(current, progress)
			}
		})
		defer stop()

		if err := client.UploadStream(ctx, progressReader); err != nil {
			return streamResult{}, fmt.Errorf("upload stream: %w", err)
		}
		return streamResult{bytes: progressReader.Current(), hash: blake3.Hex(hasher)}, nil
	})
	if err != nil {
		return streamResult{}, normalize(err, uploadTimedOut)
	}

	slog.Info("uploaded stream", "path", remotePath, "bytes", result.bytes, "hash", result.hash)
	return result, nil
}
