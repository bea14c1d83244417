// Package sqlite provides the SQLite-backed run history repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"testweave/internal/domain/repository"
	"testweave/internal/domain/workflow"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	status      TEXT NOT NULL,
	iterations  INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	backend     TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// RunHistoryRepository stores run outcomes in a SQLite database.
type RunHistoryRepository struct {
	db *sql.DB
}

// NewRunHistoryRepository opens (or creates) the database at dbPath and
// applies the schema.
func NewRunHistoryRepository(dbPath string) (*RunHistoryRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create run history dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open run history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate run history db: %w", err)
	}
	return &RunHistoryRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *RunHistoryRepository) Close() error {
	return r.db.Close()
}

func (r *RunHistoryRepository) Save(ctx context.Context, record *repository.RunRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, mode, status, iterations, passed, failed, backend, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Mode.String(),
		record.Status.String(),
		record.Iterations,
		record.Passed,
		record.Failed,
		record.Backend,
		record.StartedAt.UTC(),
		record.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", record.ID, err)
	}
	return nil
}

func (r *RunHistoryRepository) Recent(ctx context.Context, limit int) ([]*repository.RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mode, status, iterations, passed, failed, backend, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var records []*repository.RunRecord
	for rows.Next() {
		record, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *RunHistoryRepository) Find(ctx context.Context, id string) (*repository.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, mode, status, iterations, passed, failed, backend, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	record, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func scanRun(scan func(dest ...interface{}) error) (*repository.RunRecord, error) {
	var record repository.RunRecord
	var mode, status string
	var startedAt, finishedAt time.Time
	if err := scan(&record.ID, &mode, &status, &record.Iterations,
		&record.Passed, &record.Failed, &record.Backend, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	record.Mode = workflow.Mode(mode)
	record.Status = workflow.Status(status)
	record.StartedAt = startedAt
	record.FinishedAt = finishedAt
	return &record, nil
}
