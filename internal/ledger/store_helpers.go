package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, organization, kind, status, started_at, finished_at, error_message, candidates, new_count, updated_count, missing_count, dropped_count, flagged_count"

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		kind        string
		status      string
		startedRaw  string
		finishedRaw sql.NullString
		message     sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Organization,
		&kind,
		&status,
		&startedRaw,
		&finishedRaw,
		&message,
		&run.Stats.Candidates,
		&run.Stats.New,
		&run.Stats.Updated,
		&run.Stats.Missing,
		&run.Stats.Dropped,
		&run.Stats.Flagged,
	); err != nil {
		return Run{}, err
	}
	run.Kind = Kind(kind)
	run.Status = Status(status)
	run.ErrorMessage = message.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw.String); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func upsertOrganization(ctx context.Context, tx *sql.Tx, name string, status Status, kind Kind, stamp string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO organizations (name, starred, last_status, last_kind, last_run_at, updated_at)
         VALUES (?, 0, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET
             last_status = excluded.last_status,
             last_kind = excluded.last_kind,
             last_run_at = excluded.last_run_at,
             updated_at = excluded.updated_at`,
		name, status, kind, stamp, stamp,
	)
	if err != nil {
		return fmt.Errorf("upsert organization: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
