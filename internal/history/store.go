package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrNotFound indicates no run exists with the requested identifier.
var ErrNotFound = errors.New("run not found")

// ErrInvalidTransition indicates a status change that would move a run
// backward or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid status transition")

// Open initializes or connects to the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("history: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("history: ensure directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Create inserts a new run record in the created status.
func (s *Store) Create(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("history: run required")
	}
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("history: run id required")
	}
	now := time.Now().UTC()
	run.Status = StatusCreated
	run.CreatedAt = now
	run.UpdatedAt = now

	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, source_path, target_language, voice, used_fallback_voice, status, error_message, output_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourcePath, run.TargetLanguage, run.Voice, boolToInt(run.UsedFallbackVoice),
		string(run.Status), run.ErrorMessage, run.OutputPath,
		run.CreatedAt.Format(time.RFC3339Nano), run.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}
	return nil
}

// Get fetches one run by id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_path, target_language, voice, used_fallback_voice, status, error_message, output_path, created_at, updated_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: get run: %w", err)
	}
	return run, nil
}

// Transition moves a run to the next status, enforcing forward-only order.
func (s *Store) Transition(ctx context.Context, id string, next Status) error {
	if !next.Valid() {
		return fmt.Errorf("history: %w: unknown status %q", ErrInvalidTransition, next)
	}
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !run.Status.CanTransition(next) {
		return fmt.Errorf("history: %w: %s -> %s", ErrInvalidTransition, run.Status, next)
	}
	_, err = s.execWithRetry(ctx,
		"UPDATE runs SET status = ?, updated_at = ? WHERE id = ?",
		string(next), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("history: update status: %w", err)
	}
	return nil
}

// SetVoice records the resolved voice for a run.
func (s *Store) SetVoice(ctx context.Context, id, voiceID string, usedFallback bool) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE runs SET voice = ?, used_fallback_voice = ?, updated_at = ? WHERE id = ?",
		voiceID, boolToInt(usedFallback), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("history: set voice: %w", err)
	}
	return requireRow(res)
}

// MarkCompleted finalizes a successful run with its output path.
func (s *Store) MarkCompleted(ctx context.Context, id, outputPath string) error {
	if err := s.Transition(ctx, id, StatusCompleted); err != nil {
		return err
	}
	_, err := s.execWithRetry(ctx,
		"UPDATE runs SET output_path = ?, updated_at = ? WHERE id = ?",
		outputPath, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("history: record output: %w", err)
	}
	return nil
}

// MarkFailed finalizes a failed run with its error message.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	if err := s.Transition(ctx, id, StatusFailed); err != nil {
		return err
	}
	_, err := s.execWithRetry(ctx,
		"UPDATE runs SET error_message = ?, updated_at = ? WHERE id = ?",
		strings.TrimSpace(message), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("history: record failure: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, target_language, voice, used_fallback_voice, status, error_message, output_path, created_at, updated_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run          Run
		usedFallback int
		status       string
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(&run.ID, &run.SourcePath, &run.TargetLanguage, &run.Voice, &usedFallback,
		&status, &run.ErrorMessage, &run.OutputPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	run.UsedFallbackVoice = usedFallback != 0
	run.Status = Status(status)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		run.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		run.UpdatedAt = ts
	}
	return &run, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
