package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/beanbocchi/lakeprobe/config"
	"github.com/beanbocchi/lakeprobe/internal/client/objectstore"
	"github.com/beanbocchi/lakeprobe/internal/history"
	"github.com/beanbocchi/lakeprobe/internal/model"
	"github.com/beanbocchi/lakeprobe/internal/utils/ioutil"
	"github.com/beanbocchi/lakeprobe/pkg/future"
)

type Service struct {
	factory objectstore.Factory
	// storage is nil when the run history is disabled
	storage *history.Store
	console io.Writer

	backend          string
	timeout          time.Duration
	progressInterval time.Duration
	generator        ioutil.RandomFileOptions
	verify           bool
}

// NewService wires the probe to a backend factory. storage may be nil, console
// receives the step messages and defaults to stdout.
func NewService(cfg *config.Config, factory objectstore.Factory, storage *history.Store, console io.Writer) *Service {
	if console == nil {
		console = os.Stdout
	}

	timeout := cfg.Transfer.Timeout
	if timeout <= 0 {
		timeout = future.DefaultTimeout
	}
	interval := cfg.Transfer.ProgressInterval
	if interval <= 0 {
		interval = time.Second
	}

	return &Service{
		factory:          factory,
		storage:          storage,
		console:          console,
		backend:          cfg.Backend.Type,
		timeout:          timeout,
		progressInterval: interval,
		generator: ioutil.RandomFileOptions{
			ChunkSize: cfg.Generator.ChunkSize,
			Exact:     cfg.Generator.ExactSize,
		},
		verify: cfg.Verify.Enabled,
	}
}

func (s *Service) client(remotePath string) (objectstore.Client, error) {
	path, err := objectstore.ParsePath(remotePath)
	if err != nil {
		return nil, err
	}
	client, err := s.factory.NewClient(path)
	if err != nil {
		return nil, fmt.Errorf("build client for %s: %w", path, err)
	}
	return client, nil
}

// await runs fn through the completion bridge with the configured timeout.
func await[T any](ctx context.Context, s *Service, fn func(ctx context.Context) (T, error)) (T, error) {
	return future.Await(ctx, s.timeout, fn)
}

// normalize maps every failure onto model.ErrIO. A bridge timeout carries
// timeoutMsg as its message.
func normalize(err error, timeoutMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, future.ErrTimeout):
		return model.ErrIO.Fmt(timeoutMsg)
	case errors.Is(err, model.ErrIO):
		return err
	default:
		return model.ErrIO.Wrap(err)
	}
}

func (s *Service) say(msg string) {
	fmt.Fprintln(s.console, msg)
}

func (s *Service) updateRun(ctx context.Context, params history.UpdateRunParams) {
	if s.storage == nil || params.ID == "" {
		return
	}
	if err := s.storage.UpdateRun(ctx, params); err != nil {
		slog.Warn("failed to update run", "run", params.ID, "error", err)
	}
}

func (s *Service) recordStep(ctx context.Context, params history.RecordStepParams) {
	if s.storage == nil || params.RunID == "" {
		return
	}
	if err := s.storage.RecordStep(ctx, params); err != nil {
		slog.Warn("failed to record step", "run", params.RunID, "step", params.Name, "error", err)
	}
}
