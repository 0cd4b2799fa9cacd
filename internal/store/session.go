package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/trickle/internal/replay"
)

// ErrNotFound is returned when a session id has no row.
var ErrNotFound = errors.New("session not found")

// Session is one recorded replay run.
type Session struct {
	ID            string        `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
	Dataset       string        `json:"dataset"`
	BoundaryField string        `json:"boundary_field"`
	Boundary      string        `json:"boundary"`
	Sink          string        `json:"sink"`
	Interval      time.Duration `json:"interval"`
	Total         int           `json:"total_records"`
	Succeeded     int           `json:"succeeded_count"`
	Failed        int           `json:"failed_count"`
	Cancelled     bool          `json:"cancelled"`
}

// CreateSession inserts a new session row at the start of a run.
// Totals are zero until FinishSession.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, started_at, dataset, boundary_field, boundary, sink, interval_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		sess.StartedAt,
		sess.Dataset,
		sess.BoundaryField,
		sess.Boundary,
		sess.Sink,
		sess.Interval.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FinishSession records the outcome of a run: the summary counts, the
// failure list, and whether the run was cancelled. The session row and
// its failures are written in a single transaction so a crash cannot
// leave counts without their failure detail.
func (s *Store) FinishSession(ctx context.Context, id string, summary replay.Summary, cancelled bool, finishedAt time.Time) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET finished_at = ?, total = ?, succeeded = ?, failed = ?, cancelled = ?
		WHERE id = ?
	`,
		finishedAt,
		summary.Total,
		summary.Succeeded,
		summary.Failed,
		cancelled,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish session %s: %w", id, ErrNotFound)
	}

	for _, f := range summary.Failures {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO failures (session_id, record_index, kind, message)
			VALUES (?, ?, ?, ?)
		`, id, f.Index, string(f.Kind), f.Message)
		if err != nil {
			return fmt.Errorf("write failure for record %d: %w", f.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, most recent first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, dataset, boundary_field, boundary,
		       sink, interval_ms, total, succeeded, failed, cancelled
		FROM sessions
		ORDER BY started_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession returns one session and its failures ordered by record
// index. Returns ErrNotFound for an unknown id.
func (s *Store) GetSession(ctx context.Context, id string) (Session, []replay.Failure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, dataset, boundary_field, boundary,
		       sink, interval_ms, total, succeeded, failed, cancelled
		FROM sessions
		WHERE id = ?
	`, id)
	if err != nil {
		return Session{}, nil, fmt.Errorf("get session: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Session{}, nil, fmt.Errorf("get session: %w", err)
		}
		return Session{}, nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	sess, err := scanSession(rows)
	if err != nil {
		return Session{}, nil, fmt.Errorf("get session: %w", err)
	}
	rows.Close()

	failures, err := s.sessionFailures(ctx, id)
	if err != nil {
		return Session{}, nil, err
	}
	return sess, failures, nil
}

// sessionFailures returns a session's failures in submission order.
func (s *Store) sessionFailures(ctx context.Context, id string) ([]replay.Failure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_index, kind, message
		FROM failures
		WHERE session_id = ?
		ORDER BY record_index ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get failures: %w", err)
	}
	defer rows.Close()

	var failures []replay.Failure
	for rows.Next() {
		var f replay.Failure
		var kind string
		if err := rows.Scan(&f.Index, &kind, &f.Message); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.Kind = replay.ErrorKind(kind)
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get failures: %w", err)
	}
	return failures, nil
}

// scanSession reads one session row.
func scanSession(rows *sql.Rows) (Session, error) {
	var sess Session
	var finished sql.NullTime
	var intervalMS int64
	err := rows.Scan(
		&sess.ID,
		&sess.StartedAt,
		&finished,
		&sess.Dataset,
		&sess.BoundaryField,
		&sess.Boundary,
		&sess.Sink,
		&intervalMS,
		&sess.Total,
		&sess.Succeeded,
		&sess.Failed,
		&sess.Cancelled,
	)
	if err != nil {
		return Session{}, err
	}
	if finished.Valid {
		t := finished.Time
		sess.FinishedAt = &t
	}
	sess.Interval = time.Duration(intervalMS) * time.Millisecond
	return sess, nil
}
