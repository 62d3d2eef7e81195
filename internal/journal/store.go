package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/politrack-jp/disclosure-ocr/constants"
)

// Entry is one processed file's outcome within a run.
type Entry struct {
	Path      string
	FormType  string
	Status    constants.FileStatus
	Rows      int
	Err       string
	ElapsedMS int64
}

// Store is a SQLite-backed run journal: one row per file the batch touched,
// grouped by run ID. The journal is operational bookkeeping; a write failure
// is logged and never fails the batch.
type Store struct {
	conn   *sql.DB
	runID  string
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS file_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL,
  path TEXT NOT NULL,
  form_type TEXT NOT NULL,
  status TEXT NOT NULL,
  rows_produced INTEGER NOT NULL DEFAULT 0,
  error TEXT,
  elapsed_ms INTEGER NOT NULL DEFAULT 0,
  recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_file_runs_run ON file_runs(run_id);
`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &Store{
		conn:   conn,
		runID:  uuid.New().String(),
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// RunID identifies this process's batch run in the journal.
func (s *Store) RunID() string {
	return s.runID
}

// RecordFile appends one file outcome to the journal.
func (s *Store) RecordFile(ctx context.Context, e Entry) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO file_runs (run_id, path, form_type, status, rows_produced, error, elapsed_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, e.Path, e.FormType, string(e.Status), e.Rows, e.Err, e.ElapsedMS,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		s.logger.Warn("journal.write_failed", "path", e.Path, "error", err)
	}
	return err
}

// RunSummary aggregates one run's outcomes by status.
func (s *Store) RunSummary(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM file_runs WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		summary[status] = n
	}
	return summary, rows.Err()
}
