package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// BeginRun inserts a new run and returns its generated identifier.
func (s *Store) BeginRun(ctx context.Context, source, destination, policy string) (string, error) {
	id := uuid.NewString()
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, started_at, source, destination, policy, status) VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		time.Now().UTC().Format(timeLayout),
		source,
		destination,
		policy,
		StatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Record appends an entry to runID. Sequence numbers are assigned in insertion
// order starting at 1.
func (s *Store) Record(ctx context.Context, runID string, entry Entry) error {
	_, err := s.exec(ctx,
		`INSERT INTO entries (run_id, seq, phase, source, destination, error)
         VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM entries WHERE run_id = ?), ?, ?, ?, ?)`,
		runID,
		runID,
		string(entry.Phase),
		entry.Source,
		nullableString(entry.Destination),
		nullableString(entry.Error),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// FinishRun stores the final counters and status for runID.
func (s *Store) FinishRun(ctx context.Context, runID, status string, summary Summary) error {
	res, err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, copied = ?, clustered = ?, moved = ?, failures = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout),
		status,
		summary.Copied,
		summary.Clustered,
		summary.Moved,
		summary.Failures,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, source, destination, policy, status, copied, clustered, moved, failures`

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
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
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun looks up a run by id. A unique id prefix is accepted.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? || '%' ORDER BY id = ? DESC LIMIT 2`,
		id, id, id,
	)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch {
	case len(matches) == 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case matches[0].ID == id || len(matches) == 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Entries returns every entry of runID in sequence order.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, phase, source, destination, error FROM entries WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry       Entry
			phase       string
			destination sql.NullString
			errText     sql.NullString
		)
		if err := rows.Scan(&entry.Seq, &phase, &entry.Source, &destination, &errText); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Phase = Phase(phase)
		entry.Destination = destination.String
		entry.Error = errText.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	if err := row.Scan(
		&run.ID, &started, &finished, &run.Source, &run.Destination, &run.Policy, &run.Status,
		&run.Copied, &run.Clustered, &run.Moved, &run.Failures,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
