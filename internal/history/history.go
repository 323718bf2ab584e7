// Package history records probe runs and their steps in a SQLite database.
//
// Runs follow the job lifecycle pending -> uploading -> completed | error and
// are updated in place while the probe works through its steps.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/guregu/null/v6"
	_ "modernc.org/sqlite"

	"github.com/beanbocchi/lakeprobe/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	StatusPending   = "pending"
	StatusUploading = "uploading"
	StatusCompleted = "completed"
	StatusError     = "error"
)

type Run struct {
	ID            string      `json:"id"`
	Backend       string      `json:"backend"`
	RemotePath    string      `json:"remote_path"`
	RequestedSize int64       `json:"requested_size"`
	ActualSize    null.Int    `json:"actual_size"`
	Status        string      `json:"status"`
	Progress      int64       `json:"progress"`
	ErrorMessage  null.String `json:"error_message"`
	StartedAt     time.Time   `json:"started_at"`
	CompletedAt   null.Time   `json:"completed_at"`
}

type Step struct {
	ID           int64         `json:"id"`
	RunID        string        `json:"run_id"`
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Bytes        int64         `json:"bytes"`
	Duration     time.Duration `json:"duration"`
	ErrorMessage null.String   `json:"error_message"`
	StartedAt    time.Time     `json:"started_at"`
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// m.Close would close db as well, so it is left to Store.Close.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type CreateRunParams struct {
	ID            string
	Backend       string
	RemotePath    string
	RequestedSize int64
	StartedAt     time.Time
}

func (s *Store) CreateRun(ctx context.Context, params CreateRunParams) (Run, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, backend, remote_path, requested_size, status, progress, started_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		params.ID, params.Backend, params.RemotePath, params.RequestedSize, StatusPending, params.StartedAt.UTC(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return s.GetRun(ctx, params.ID)
}

// UpdateRunParams only changes the columns whose field is non-nil.
type UpdateRunParams struct {
	ID           string
	Status       *string
	Progress     *int64
	ActualSize   *int64
	ErrorMessage *string
	CompletedAt  *time.Time
}

func (s *Store) UpdateRun(ctx context.Context, params UpdateRunParams) error {
	var completedAt *time.Time
	if params.CompletedAt != nil {
		t := params.CompletedAt.UTC()
		completedAt = &t
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
		    status = COALESCE(?, status),
		    progress = COALESCE(?, progress),
		    actual_size = COALESCE(?, actual_size),
		    error_message = COALESCE(?, error_message),
		    completed_at = COALESCE(?, completed_at)
		 WHERE id = ?`,
		params.Status, params.Progress, params.ActualSize, params.ErrorMessage, completedAt, params.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run %s: %w", params.ID, sql.ErrNoRows)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, backend, remote_path, requested_size, actual_size, status, progress, error_message, started_at, completed_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns one page of runs, most recent first.
func (s *Store) ListRuns(ctx context.Context, params model.PaginationParams) (model.PaginateResult[Run], error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return model.PaginateResult[Run]{}, fmt.Errorf("count runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, backend, remote_path, requested_size, actual_size, status, progress, error_message, started_at, completed_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ? OFFSET ?`, params.GetLimit(), params.Offset())
	if err != nil {
		return model.PaginateResult[Run]{}, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return model.PaginateResult[Run]{}, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return model.PaginateResult[Run]{}, fmt.Errorf("list runs: %w", err)
	}

	return model.PaginateResult[Run]{
		PageParams: params,
		Data:       runs,
		Total:      null.IntFrom(total),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID, &run.Backend, &run.RemotePath, &run.RequestedSize, &run.ActualSize,
		&run.Status, &run.Progress, &run.ErrorMessage, &run.StartedAt, &run.CompletedAt,
	)
	return run, err
}

type RecordStepParams struct {
	RunID     string
	Name      string
	Bytes     int64
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

func (s *Store) RecordStep(ctx context.Context, params RecordStepParams) error {
	status := StatusCompleted
	var errMsg *string
	if params.Err != nil {
		status = StatusError
		msg := params.Err.Error()
		errMsg = &msg
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO steps (run_id, name, status, bytes, duration_ms, error_message, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		params.RunID, params.Name, status, params.Bytes, params.Duration.Milliseconds(), errMsg, params.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

func (s *Store) ListSteps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, name, status, bytes, duration_ms, error_message, started_at
		 FROM steps WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			step       Step
			durationMs int64
		)
		if err := rows.Scan(&step.ID, &step.RunID, &step.Name, &step.Status, &step.Bytes, &durationMs, &step.ErrorMessage, &step.StartedAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.Duration = time.Duration(durationMs) * time.Millisecond
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
