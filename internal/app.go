package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/guregu/null/v6"

	"github.com/beanbocchi/lakeprobe/config"
	"github.com/beanbocchi/lakeprobe/internal/client/objectstore"
	"github.com/beanbocchi/lakeprobe/internal/client/objectstore/datalake"
	"github.com/beanbocchi/lakeprobe/internal/client/objectstore/local"
	"github.com/beanbocchi/lakeprobe/internal/client/objectstore/stoj"
	"github.com/beanbocchi/lakeprobe/internal/history"
	"github.com/beanbocchi/lakeprobe/internal/model"
	"github.com/beanbocchi/lakeprobe/internal/service"
	"github.com/beanbocchi/lakeprobe/pkg/response"
)

// NewConfig provides the application configuration
func NewConfig() *config.Config {
	return config.GetConfig()
}

func SetupLogger() {
	cfg := config.GetConfig().Log

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	// stdout carries the probe steps, logs go to stderr
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// NewFactory builds the configured backend. account and token are the
// credentials given on the command line; the local backend ignores both and
// storj takes token as its access grant.
func NewFactory(ctx context.Context, cfg *config.Config, account, token string) (objectstore.Factory, error) {
	var (
		factory objectstore.Factory
		err     error
	)

	switch cfg.Backend.Type {
	case "datalake":
		factory, err = datalake.NewFactory(datalake.DatalakeConfig{
			AccountName: account,
			AccountKey:  token,
			Endpoint:    cfg.Datalake.Endpoint,
			ChunkSize:   cfg.Transfer.ChunkSize,
			Concurrency: cfg.Transfer.Concurrency,
		})
	case "storj":
		factory, err = stoj.NewFactory(ctx, stoj.StorjConfig{
			AccessGrant: token,
		})
	case "local":
		factory, err = local.NewFactory(local.LocalConfig{
			Root: cfg.Local.Root,
		})
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
	}
	if err != nil {
		return nil, err
	}
	return factory, nil
}

// openHistory returns a nil store when the history is disabled.
func openHistory(ctx context.Context, cfg *config.Config) (*history.Store, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

type ProbeParams struct {
	AccountName string
	AccessToken string
	LocalPath   string
	Size        int64
	RemotePath  string
}

// Probe runs the upload/delete sequence against the configured backend.
func Probe(ctx context.Context, params ProbeParams) (err error) {
	cfg := NewConfig()

	factory, err := NewFactory(ctx, cfg, params.AccountName, params.AccessToken)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", cfg.Backend.Type, err)
	}
	defer func() {
		if closeErr := factory.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close backend: %w", closeErr))
		}
	}()

	store, err := openHistory(ctx, cfg)
	if err != nil {
		// The probe still runs without its ledger
		slog.Warn("run history unavailable", "path", cfg.History.Path, "error", err)
	}
	if store != nil {
		defer store.Close()
	}

	svc := service.NewService(cfg, factory, store, os.Stdout)
	return svc.Run(ctx, service.RunParams{
		LocalPath:  params.LocalPath,
		Size:       params.Size,
		RemotePath: params.RemotePath,
	})
}

type HistoryParams struct {
	Page  int32
	Limit int32
	JSON  bool
}

// History writes a page of the most recent runs to w as a table, or as JSON
// when params.JSON is set.
func History(ctx context.Context, w io.Writer, params HistoryParams) error {
	cfg := NewConfig()

	page, err := listRuns(ctx, cfg, model.PaginationParams{
		Page:  null.Int32From(params.Page),
		Limit: params.Limit,
	})
	if params.JSON {
		var v any = response.Paginate(page)
		if err != nil {
			v = response.Fail(err)
		}
		out, merr := sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if merr != nil {
			return fmt.Errorf("marshal runs: %w", merr)
		}
		fmt.Fprintln(w, string(out))
		return err
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBACKEND\tREMOTE\tSIZE\tSTATUS\tSTARTED\tDURATION\tERROR")
	for _, run := range page.Data {
		duration := "-"
		if run.CompletedAt.Valid {
			duration = run.CompletedAt.Time.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			run.ID, run.Backend, run.RemotePath, run.ActualSize.ValueOrZero(), run.Status,
			run.StartedAt.Local().Format(time.DateTime), duration, run.ErrorMessage.ValueOrZero())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if next := page.NextPage(); next.Valid {
		fmt.Fprintf(w, "\n%d of %d runs, next page: %d\n", len(page.Data), page.Total.Int64, next.Int32)
	}
	return nil
}

func listRuns(ctx context.Context, cfg *config.Config, params model.PaginationParams) (model.PaginateResult[history.Run], error) {
	store, err := openHistory(ctx, cfg)
	if err != nil {
		return model.PaginateResult[history.Run]{}, err
	}
	if store == nil {
		return model.PaginateResult[history.Run]{}, model.ErrIO.Fmt("run history is disabled, set history.path")
	}
	defer store.Close()

	return store.ListRuns(ctx, params)
}
