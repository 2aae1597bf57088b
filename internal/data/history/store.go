package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	return OpenWithTimeout(path, 2*time.Second)
}

// OpenWithTimeout opens the history database, creating it and its parent
// directory when missing, and applies pending migrations.
func OpenWithTimeout(path string, busyTimeout time.Duration) (*Store, error) {
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

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
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

// SaveSnapshot stores snapshot and its unused class names. A snapshot with
// an existing run id replaces the earlier row. The stored snapshot, with
// defaults filled in, is returned.
func (s *Store) SaveSnapshot(projectKey string, snapshot Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.ProjectKey = normalizeProjectKey(projectKey)
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO snapshots (
  run_id, project_key, schema_version, ts_utc, class_count, unused_count,
  framework_count, skipped_count, duplicate_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  project_key=excluded.project_key,
  schema_version=excluded.schema_version,
  ts_utc=excluded.ts_utc,
  class_count=excluded.class_count,
  unused_count=excluded.unused_count,
  framework_count=excluded.framework_count,
  skipped_count=excluded.skipped_count,
  duplicate_count=excluded.duplicate_count
`
	err := s.withRetry("save snapshot", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			query,
			snapshot.RunID,
			snapshot.ProjectKey,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.ClassCount,
			snapshot.UnusedCount,
			snapshot.FrameworkCount,
			snapshot.SkippedCount,
			snapshot.DuplicateCount,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`DELETE FROM snapshot_unused WHERE run_id = ?`, snapshot.RunID); err != nil {
			_ = tx.Rollback()
			return err
		}
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO snapshot_unused(run_id, class_name) VALUES (?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, name := range snapshot.Unused {
			if _, err := stmt.Exec(snapshot.RunID, name); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return err
			}
		}
		if err := stmt.Close(); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

const selectSnapshot = `
SELECT
  run_id, project_key, schema_version, ts_utc, class_count, unused_count,
  framework_count, skipped_count, duplicate_count
FROM snapshots
`

// LoadSnapshots returns the snapshots of a project in chronological order
// without their unused class lists.
func (s *Store) LoadSnapshots(projectKey string, since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := selectSnapshot + " WHERE project_key = ?"
	args := []any{normalizeProjectKey(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, created_at_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

// Latest returns the most recent snapshot of a project including its unused
// class names. ok is false when the project has no snapshots.
func (s *Store) Latest(projectKey string) (snapshot Snapshot, ok bool, err error) {
	s.mu.Lock()
	query := selectSnapshot + " WHERE project_key = ? ORDER BY ts_utc DESC, created_at_utc DESC, run_id DESC LIMIT 1"
	err = s.withRetry("load latest snapshot", func() error {
		row := s.db.QueryRow(query, normalizeProjectKey(projectKey))
		var scanErr error
		snapshot, scanErr = scanSnapshot(row)
		return scanErr
	})
	s.mu.Unlock()

	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	unused, err := s.LoadUnused(snapshot.RunID)
	if err != nil {
		return Snapshot{}, false, err
	}
	snapshot.Unused = unused
	return snapshot, true, nil
}

// LoadUnused returns the sorted unused class names stored for runID.
func (s *Store) LoadUnused(runID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load unused classes", func() error {
		var qErr error
		rows, qErr = s.db.Query(`SELECT class_name FROM snapshot_unused WHERE run_id = ?`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan unused class row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unused class rows: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		tsRaw    string
		snapshot Snapshot
	)
	if err := row.Scan(
		&snapshot.RunID,
		&snapshot.ProjectKey,
		&snapshot.SchemaVersion,
		&tsRaw,
		&snapshot.ClassCount,
		&snapshot.UnusedCount,
		&snapshot.FrameworkCount,
		&snapshot.SkippedCount,
		&snapshot.DuplicateCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, err
		}
		return Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
	}
	snapshot.Timestamp = ts.UTC()
	return snapshot, nil
}

func normalizeProjectKey(projectKey string) string {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return "default"
	}
	return projectKey
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
	if errors.Is(lastErr, sql.ErrNoRows) {
		return lastErr
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
