package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName   = "sqlite"
	maxAttempts  = 5
	defaultLimit = 20
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// watch mode and a CLI invocation may write concurrently
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends a run. A zero timestamp is replaced with the current time.
func (s *Store) Record(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.DirectoryID) == "" {
		return fmt.Errorf("history run needs a directory id")
	}
	if run.Mode == "" {
		return fmt.Errorf("history run needs a mode")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	const query = `
INSERT INTO build_runs (
  directory_id, working_dir, mode, ts_utc, duration_ms,
  files_indexed, symbol_count, pending_count, removed_count, complete
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	return s.withRetry("record run", func() error {
		_, err := s.db.Exec(
			query,
			run.DirectoryID,
			run.WorkingDir,
			run.Mode,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.Duration.Milliseconds(),
			run.FilesIndexed,
			run.Symbols,
			run.Pending,
			run.Removed,
			boolToInt(run.Complete),
		)
		return err
	})
}

// Recent returns up to limit runs for a directory, newest first.
func (s *Store) Recent(directoryID string, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = defaultLimit
	}

	const query = `
SELECT
  id, directory_id, working_dir, mode, ts_utc, duration_ms,
  files_indexed, symbol_count, pending_count, removed_count, complete
FROM build_runs
WHERE directory_id = ?
ORDER BY ts_utc DESC, id DESC
LIMIT ?
`
	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, directoryID, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			tsRaw      string
			durationMS int64
			complete   int
			run        Run
		)
		if err := rows.Scan(
			&run.ID,
			&run.DirectoryID,
			&run.WorkingDir,
			&run.Mode,
			&tsRaw,
			&durationMS,
			&run.FilesIndexed,
			&run.Symbols,
			&run.Pending,
			&run.Removed,
			&complete,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Complete = complete != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// Forget deletes every run recorded for a directory.
func (s *Store) Forget(directoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withRetry("forget runs", func() error {
		_, err := s.db.Exec(`DELETE FROM build_runs WHERE directory_id = ?`, directoryID)
		return err
	})
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
