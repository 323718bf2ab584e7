package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/smithy-go/ptr"
	"github.com/google/uuid"

	"github.com/beanbocchi/lakeprobe/internal/history"
	"github.com/beanbocchi/lakeprobe/internal/model"
	"github.com/beanbocchi/lakeprobe/internal/utils/ioutil"
)

type RunParams struct {
	LocalPath  string
	Size       int64
	RemotePath string
}

// Run creates the local file, uploads it whole and then as a stream, and
// always removes both copies afterwards. A cleanup failure is joined with the
// failure that ended the sequence.
func (s *Service) Run(ctx context.Context, params RunParams) (err error) {
	runID := s.startRun(ctx, params)

	// A timed out stream keeps reporting progress; drop it once the run is over.
	var (
		progressMu sync.Mutex
		finished   bool
	)

	defer func() {
		progressMu.Lock()
		finished = true
		progressMu.Unlock()

		if cleanupErr := s.cleanup(ctx, runID, params); cleanupErr != nil {
			err = errors.Join(err, cleanupErr)
		}
		s.finishRun(ctx, runID, err)
	}()

	s.say("Creating local file")
	if err := s.step(ctx, runID, "create_local_file", func() (int64, error) {
		written, err := ioutil.CreateRandomFile(params.LocalPath, params.Size, s.generator)
		if err != nil {
			return written, model.ErrIO.Wrap(fmt.Errorf("create local file: %w", err))
		}
		if written != params.Size {
			slog.Warn("local file size differs from requested size", "path", params.LocalPath, "requested", params.Size, "bytes", written)
		}
		s.updateRun(ctx, history.UpdateRunParams{
			ID:         runID,
			Status:     ptr.String(history.StatusUploading),
			ActualSize: ptr.Int64(written),
		})
		return written, nil
	}); err != nil {
		return err
	}

	s.say("Uploading using UploadFile()")
	if err := s.step(ctx, runID, "upload_file", func() (int64, error) {
		return s.uploadFile(ctx, params.LocalPath, params.RemotePath)
	}); err != nil {
		return err
	}

	s.say("Uploading using UploadStream()")
	var stream streamResult
	if err := s.step(ctx, runID, "upload_stream", func() (int64, error) {
		var err error
		stream, err = s.uploadStream(ctx, params.LocalPath, params.RemotePath, func(_ int64, progress float64) {
			progressMu.Lock()
			defer progressMu.Unlock()
			if finished {
				return
			}
			s.updateRun(ctx, history.UpdateRunParams{
				ID:       runID,
				Progress: ptr.Int64(int64(progress * 100)),
			})
		})
		return stream.bytes, err
	}); err != nil {
		return err
	}

	if s.verify {
		s.say("Verifying remote file")
		if err := s.step(ctx, runID, "verify", func() (int64, error) {
			return stream.bytes, s.Verify(ctx, params.RemotePath, stream.hash)
		}); err != nil {
			return err
		}
	}

	s.say("Test successful")
	return nil
}

func (s *Service) cleanup(ctx context.Context, runID string, params RunParams) error {
	var errs []error

	s.say("Deleting local file")
	if err := s.step(ctx, runID, "delete_local_file", func() (int64, error) {
		if err := os.Remove(params.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, model.ErrIO.Wrap(fmt.Errorf("delete local file: %w", err))
		}
		return 0, nil
	}); err != nil {
		errs = append(errs, err)
	}

	s.say("Deleting remote file")
	if err := s.step(ctx, runID, "delete_remote_file", func() (int64, error) {
		return 0, s.DeleteFile(ctx, params.RemotePath)
	}); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// step runs fn and records its outcome in the run history.
func (s *Service) step(ctx context.Context, runID, name string, fn func() (int64, error)) error {
	started := time.Now()
	n, err := fn()
	if err != nil {
		slog.Error("step failed", "step", name, "error", err)
	}

	s.recordStep(ctx, history.RecordStepParams{
		RunID:     runID,
		Name:      name,
		Bytes:     n,
		StartedAt: started,
		Duration:  time.Since(started),
		Err:       err,
	})
	return err
}

// startRun returns "" when the history is disabled or unavailable.
func (s *Service) startRun(ctx context.Context, params RunParams) string {
	if s.storage == nil {
		return ""
	}

	run, err := s.storage.CreateRun(ctx, history.CreateRunParams{
		ID:            uuid.New().String(),
		Backend:       s.backend,
		RemotePath:    params.RemotePath,
		RequestedSize: params.Size,
		StartedAt:     time.Now(),
	})
	if err != nil {
		slog.Warn("failed to create run", "error", err)
		return ""
	}
	return run.ID
}

func (s *Service) finishRun(ctx context.Context, runID string, err error) {
	if err != nil {
		s.updateRun(ctx, history.UpdateRunParams{
			ID:           runID,
			Status:       ptr.String(history.StatusError),
			ErrorMessage: ptr.String(err.Error()),
			CompletedAt:  ptr.Time(time.Now()),
		})
		return
	}

	s.updateRun(ctx, history.UpdateRunParams{
		ID:          runID,
		Status:      ptr.String(history.StatusCompleted),
		Progress:    ptr.Int64(100),
		CompletedAt: ptr.Time(time.Now()),
	})
}
