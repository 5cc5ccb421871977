package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Job statuses recorded in the history.
const (
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// Job is one recorded item outcome.
type Job struct {
	ID           int64
	ItemID       string
	SourcePath   string
	OutputPath   string
	Status       string
	ErrorMessage string
	Width        int
	Height       int
	Duration     time.Duration
	CreatedAt    time.Time
}

// History wraps the SQLite job log.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the database at path and ensures the schema.
func OpenHistory(path string) (*History, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// Single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	h := &History{db: db}
	if err := h.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS upscale_jobs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            item_id TEXT NOT NULL,
            source_path TEXT NOT NULL,
            output_path TEXT,
            status TEXT NOT NULL,
            error_message TEXT,
            width INTEGER,
            height INTEGER,
            duration_ms INTEGER,
            created_at INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_upscale_jobs_created_at ON upscale_jobs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := h.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create history schema: %w", err)
		}
	}
	return nil
}

// Record appends a job. A nil history records nothing.
func (h *History) Record(ctx context.Context, job Job) error {
	if h == nil {
		return nil
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO upscale_jobs (item_id, source_path, output_path, status, error_message, width, height, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		job.ItemID, job.SourcePath, job.OutputPath, job.Status, job.ErrorMessage,
		job.Width, job.Height, job.Duration.Milliseconds(), job.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}
	return nil
}

// Recent returns the latest jobs, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Job, error) {
	if h == nil {
		return nil, errors.New("history not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, item_id, source_path, output_path, status, error_message, width, height, duration_ms, created_at
         FROM upscale_jobs ORDER BY created_at DESC, id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		var output, errorMsg sql.NullString
		var durationMs, createdMs int64
		if err := rows.Scan(&job.ID, &job.ItemID, &job.SourcePath, &output, &job.Status, &errorMsg,
			&job.Width, &job.Height, &durationMs, &createdMs); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		job.OutputPath = output.String
		job.ErrorMessage = errorMsg.String
		job.Duration = time.Duration(durationMs) * time.Millisecond
		job.CreatedAt = time.UnixMilli(createdMs)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Close closes the underlying DB.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}
