package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the ledger database at path.
func Open(path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps pragmas and transactions on one handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
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
func (s *Store) Path() string {
	return s.path
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// BeginRun records a running run for organization and returns it.
func (s *Store) BeginRun(ctx context.Context, organization string, kind Kind) (*Run, error) {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return nil, errors.New("begin run: organization required")
	}
	run := &Run{
		ID:           uuid.NewString(),
		Organization: organization,
		Kind:         kind,
		Status:       StatusRunning,
		StartedAt:    s.now().UTC(),
	}
	started := run.StartedAt.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, organization, kind, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Organization, run.Kind, run.Status, started,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	if err := upsertOrganization(ctx, tx, organization, run.Status, run.Kind, started); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// Complete marks run as succeeded with stats.
func (s *Store) Complete(ctx context.Context, run *Run, stats Stats) error {
	if run == nil {
		return errors.New("complete run: run is nil")
	}
	run.Stats = stats
	return s.finish(ctx, run, StatusSucceeded, "")
}

// Fail marks run as failed or blocked. Non-terminal statuses are recorded as failed.
func (s *Store) Fail(ctx context.Context, run *Run, status Status, cause error) error {
	if run == nil {
		return errors.New("fail run: run is nil")
	}
	if status != StatusBlocked {
		status = StatusFailed
	}
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return s.finish(ctx, run, status, message)
}

func (s *Store) finish(ctx context.Context, run *Run, status Status, message string) error {
	finished := s.now().UTC()
	stamp := finished.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("finish run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE runs
         SET status = ?, finished_at = ?, error_message = ?,
             candidates = ?, new_count = ?, updated_count = ?, missing_count = ?,
             dropped_count = ?, flagged_count = ?
         WHERE id = ?`,
		status, stamp, nullableString(message),
		run.Stats.Candidates, run.Stats.New, run.Stats.Updated, run.Stats.Missing,
		run.Stats.Dropped, run.Stats.Flagged,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("update run %s: not found", run.ID)
	}
	if err := upsertOrganization(ctx, tx, run.Organization, status, run.Kind, stamp); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	run.Status = status
	run.FinishedAt = finished
	run.ErrorMessage = message
	return nil
}

// Runs returns recent runs, newest first. An empty organization lists all.
// limit <= 0 returns everything.
func (s *Store) Runs(ctx context.Context, organization string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if organization = strings.TrimSpace(organization); organization != "" {
		query += ` WHERE organization = ?`
		args = append(args, organization)
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SetStarred flags or unflags an organization, creating it when unknown.
func (s *Store) SetStarred(ctx context.Context, organization string, starred bool) error {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return errors.New("set starred: organization required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (name, starred, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET starred = excluded.starred, updated_at = excluded.updated_at`,
		organization, boolToInt(starred), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("set starred: %w", err)
	}
	return nil
}

// Starred returns the starred organization names in name order.
func (s *Store) Starred(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM organizations WHERE starred = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list starred: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan starred: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Organizations returns every organization the ledger knows, in name order.
func (s *Store) Organizations(ctx context.Context) ([]Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, starred, last_status, last_kind, last_run_at FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var (
			org      Organization
			starred  int
			status   sql.NullString
			kind     sql.NullString
			lastRunS sql.NullString
		)
		if err := rows.Scan(&org.Name, &starred, &status, &kind, &lastRunS); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		org.Starred = starred != 0
		org.LastStatus = Status(status.String)
		org.LastKind = Kind(kind.String)
		if t, err := parseTimeString(lastRunS.String); err == nil {
			org.LastRunAt = t
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}
