package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, id, stage string) error {
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		id, stage, RunRunning, formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the final status and totals of a run. errMsg is recorded
// for aborted runs.
func (s *Store) FinishRun(ctx context.Context, id string, status RunStatus, totals Totals, errMsg string) error {
	var message any
	if errMsg != "" {
		message = errMsg
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, processed = ?, skipped = ?, failed = ?, error_message = ?
         WHERE id = ?`,
		status, formatTime(time.Now()), totals.Processed, totals.Skipped, totals.Failed, message, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: run %s not found", id)
	}
	return nil
}

const runColumns = "id, stage, status, started_at, finished_at, processed, skipped, failed, error_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run      Run
		status   string
		started  sql.NullString
		finished sql.NullString
		errMsg   sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.Stage, &status, &started, &finished,
		&run.Processed, &run.Skipped, &run.Failed, &errMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.ErrorMessage = errMsg.String
	return &run, nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// PruneRuns deletes runs started before cutoff together with their movies
// and transitions.
func (s *Store) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
