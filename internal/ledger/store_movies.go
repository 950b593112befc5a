package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Discover registers a movie folder for a run in the discovered state.
func (s *Store) Discover(ctx context.Context, runID, movie, sourcePath string) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		now := formatTime(time.Now())
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO movies (run_id, name, source_path, status, updated_at) VALUES (?, ?, ?, ?, ?)`,
			runID, movie, sourcePath, StatusDiscovered, now,
		); err != nil {
			return fmt.Errorf("discover movie %s: %w", movie, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transitions (run_id, movie, from_status, to_status, at) VALUES (?, ?, NULL, ?, ?)`,
			runID, movie, StatusDiscovered, now,
		); err != nil {
			return fmt.Errorf("log discovery of %s: %w", movie, err)
		}
		return tx.Commit()
	})
}

// Advance moves a movie to status to, validating the transition and
// recording it in the transition log.
func (s *Store) Advance(ctx context.Context, runID, movie string, to Status, detail Detail) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var current string
		err = tx.QueryRowContext(ctx,
			`SELECT status FROM movies WHERE run_id = ? AND name = ?`, runID, movie,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("movie %s not registered in run %s", movie, runID)
		}
		if err != nil {
			return fmt.Errorf("read status of %s: %w", movie, err)
		}
		from := Status(current)
		if !CanTransition(from, to) {
			return &ErrInvalidTransition{Movie: movie, From: from, To: to}
		}

		now := formatTime(time.Now())
		if _, err := tx.ExecContext(ctx,
			`UPDATE movies SET status = ?,
                 packets = CASE WHEN ? > 0 THEN ? ELSE packets END,
                 records = CASE WHEN ? > 0 THEN ? ELSE records END,
                 boundaries = CASE WHEN ? > 0 THEN ? ELSE boundaries END,
                 error_kind = COALESCE(NULLIF(?, ''), error_kind),
                 error_message = COALESCE(NULLIF(?, ''), error_message),
                 updated_at = ?
             WHERE run_id = ? AND name = ?`,
			to,
			detail.Packets, detail.Packets,
			detail.Records, detail.Records,
			detail.Boundaries, detail.Boundaries,
			detail.ErrorKind, detail.ErrorMessage,
			now, runID, movie,
		); err != nil {
			return fmt.Errorf("update %s: %w", movie, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transitions (run_id, movie, from_status, to_status, at) VALUES (?, ?, ?, ?, ?)`,
			runID, movie, from, to, now,
		); err != nil {
			return fmt.Errorf("log transition of %s: %w", movie, err)
		}
		return tx.Commit()
	})
}

const movieColumns = "run_id, name, source_path, status, packets, records, boundaries, error_kind, error_message, updated_at"

func scanMovie(scanner interface{ Scan(dest ...any) error }) (*Movie, error) {
	var (
		movie   Movie
		source  sql.NullString
		status  string
		kind    sql.NullString
		message sql.NullString
		updated sql.NullString
	)
	if err := scanner.Scan(&movie.RunID, &movie.Name, &source, &status,
		&movie.Packets, &movie.Records, &movie.Boundaries, &kind, &message, &updated); err != nil {
		return nil, err
	}
	movie.SourcePath = source.String
	movie.Status = Status(status)
	movie.ErrorKind = kind.String
	movie.ErrorMessage = message.String
	movie.UpdatedAt = parseTime(updated)
	return &movie, nil
}

// Movies lists the movies of a run ordered by name.
func (s *Store) Movies(ctx context.Context, runID string) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+movieColumns+` FROM movies WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// Transitions returns the transition log of one movie in a run, oldest first.
func (s *Store) Transitions(ctx context.Context, runID, movie string) ([]Transition, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT run_id, movie, from_status, to_status, at FROM transitions
         WHERE run_id = ? AND movie = ? ORDER BY id`, runID, movie)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var (
			tr   Transition
			from sql.NullString
			to   string
			at   sql.NullString
		)
		if err := rows.Scan(&tr.RunID, &tr.Movie, &from, &to, &at); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		tr.From = Status(from.String)
		tr.To = Status(to)
		tr.At = parseTime(at)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// Stats counts the movies of a run per status.
func (s *Store) Stats(ctx context.Context, runID string) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COUNT(1) FROM movies WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
