package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dirchurn/internal/churn"
	"dirchurn/internal/monitor"
)

// Entry kinds.
const (
	KindTick  = "tick"
	KindState = "state"
)

// Entry is one journal row. Tick rows fill Worker, Counter, File, and
// Outcome; state rows fill State and FileCount.
type Entry struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Worker    string    `json:"worker,omitempty"`
	Counter   int64     `json:"counter"`
	File      string    `json:"file,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	State     string    `json:"state,omitempty"`
	FileCount int       `json:"file_count"`
	Dir       string    `json:"dir,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store appends activity rows to a SQLite journal.
type Store struct {
	db    *sql.DB
	path  string
	runID string
}

// Open creates or connects to the journal at path. An empty runID is
// replaced with a fresh UUID.
func Open(path, runID string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; workers and the monitor write concurrently.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	store := &Store{db: db, path: path, runID: runID}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// RunID returns the identifier stamped on rows written by this store.
func (s *Store) RunID() string { return s.runID }

// RecordTick appends a worker tick outcome.
func (s *Store) RecordTick(ctx context.Context, result churn.TickResult) error {
	detail := ""
	if result.Err != nil {
		detail = result.Err.Error()
	}
	at := result.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (run_id, kind, worker, counter, file, outcome, dir, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID,
		KindTick,
		result.Worker,
		result.Counter,
		nullableString(result.File),
		string(result.Outcome),
		nullableString(result.Dir),
		nullableString(detail),
		at.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record tick: %w", err)
	}
	return nil
}

// RecordState appends a classification transition.
func (s *Store) RecordState(ctx context.Context, snap monitor.Snapshot) error {
	at := snap.TakenAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (run_id, kind, state, file_count, dir, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		s.runID,
		KindState,
		snap.State.String(),
		snap.Count(),
		nullableString(snap.Dir),
		at.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record state: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, kind, worker, counter, file, outcome, state, file_count, dir, detail, created_at
         FROM activity ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry                             Entry
			worker, file, outcome, state, dir sql.NullString
			detail                            sql.NullString
			counter, fileCount                sql.NullInt64
			createdAt                         int64
		)
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Kind, &worker, &counter, &file,
			&outcome, &state, &fileCount, &dir, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Worker = worker.String
		entry.Counter = counter.Int64
		entry.File = file.String
		entry.Outcome = outcome.String
		entry.State = state.String
		entry.FileCount = int(fileCount.Int64)
		entry.Dir = dir.String
		entry.Detail = detail.String
		entry.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Prune deletes entries recorded before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activity WHERE created_at < ?`, cutoff.UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return removed, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
