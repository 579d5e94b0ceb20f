package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/liftlab-data/barpath.report/internal/monitoring"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/session"
)

// ErrNotFound is returned by lookups for sessions that do not exist.
var ErrNotFound = errors.New("not found")

// SessionStore persists finished sessions and their reps. It implements
// session.Store.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a SessionStore backed by the given database.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// SaveSession writes the session row and all rep rows in one transaction.
// Saving the same session again replaces its reps, so a retried Stop does
// not duplicate rows.
func (s *SessionStore) SaveSession(ctx context.Context, sum session.Summary) error {
	pathsByID := make(map[int64]paths.Path, len(sum.Paths))
	for _, p := range sum.Paths {
		pathsByID[p.ID] = p
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session tx: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (
			session_id, exercise, tempo, started_unix_ms, ended_unix_ms,
			rep_count, avg_score
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			exercise = excluded.exercise,
			tempo = excluded.tempo,
			started_unix_ms = excluded.started_unix_ms,
			ended_unix_ms = excluded.ended_unix_ms,
			rep_count = excluded.rep_count,
			avg_score = excluded.avg_score
	`,
		sum.Session.ID,
		sum.Session.Exercise,
		sum.Session.Tempo,
		sum.Session.StartedAt.UnixMilli(),
		sum.Session.StoppedAt.UnixMilli(),
		len(sum.Reps),
		sum.Stats.AverageScore,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_reps WHERE session_id = ?`, sum.Session.ID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear session reps: %w", err)
	}

	for _, rec := range sum.Reps {
		var pathJSON []byte
		if p, ok := pathsByID[rec.PathID]; ok {
			pathJSON, err = json.Marshal(p)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("encode path for rep %d: %w", rec.RepNumber, err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO session_reps (
				session_id, rep_number, path_id,
				total_distance_m, vertical_range_m, duration_ms, point_count,
				completed_at_ms, score, completeness, efficiency, density,
				smoothness, path_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			sum.Session.ID,
			rec.RepNumber,
			rec.PathID,
			rec.TotalDistanceM,
			rec.VerticalRangeM,
			rec.DurationMs,
			rec.PointCount,
			rec.CompletedAtMs,
			rec.Score,
			rec.Completeness,
			rec.Efficiency,
			rec.Density,
			rec.Smoothness,
			nullText(string(pathJSON)),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert rep %d: %w", rec.RepNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save session tx: %w", err)
	}

	monitoring.Logf("[storage] saved session %s: %d reps", sum.Session.ID, len(sum.Reps))
	return nil
}

// GetSession returns the persisted row for one session. Unknown IDs yield
// ErrNotFound.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (SessionRow, error) {
	var row SessionRow
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, exercise, tempo, started_unix_ms, ended_unix_ms,
			rep_count, avg_score
		FROM sessions
		WHERE session_id = ?
	`, sessionID).Scan(
		&row.ID,
		&row.Exercise,
		&row.Tempo,
		&row.StartedUnixMs,
		&row.EndedUnixMs,
		&row.RepCount,
		&row.AvgScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRow{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return SessionRow{}, fmt.Errorf("get session: %w", err)
	}
	return row, nil
}

// ListSessions returns the most recent sessions, newest first.
func (s *SessionStore) ListSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, exercise, tempo, started_unix_ms, ended_unix_ms,
			rep_count, avg_score
		FROM sessions
		ORDER BY started_unix_ms DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var row SessionRow
		if err := rows.Scan(
			&row.ID,
			&row.Exercise,
			&row.Tempo,
			&row.StartedUnixMs,
			&row.EndedUnixMs,
			&row.RepCount,
			&row.AvgScore,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// SessionReps returns all rep rows for one session in rep order. Unknown
// session IDs yield ErrNotFound.
func (s *SessionStore) SessionReps(ctx context.Context, sessionID string) ([]RepRow, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, rep_number, path_id,
			total_distance_m, vertical_range_m, duration_ms, point_count,
			completed_at_ms, score, completeness, efficiency, density,
			smoothness, path_json
		FROM session_reps
		WHERE session_id = ?
		ORDER BY rep_number ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session reps: %w", err)
	}
	defer rows.Close()

	var reps []RepRow
	for rows.Next() {
		var row RepRow
		var pathJSON sql.NullString
		if err := rows.Scan(
			&row.SessionID,
			&row.RepNumber,
			&row.PathID,
			&row.TotalDistanceM,
			&row.VerticalRangeM,
			&row.DurationMs,
			&row.PointCount,
			&row.CompletedAtMs,
			&row.Score,
			&row.Completeness,
			&row.Efficiency,
			&row.Density,
			&row.Smoothness,
			&pathJSON,
		); err != nil {
			return nil, fmt.Errorf("scan rep: %w", err)
		}
		if pathJSON.Valid {
			row.PathJSON = pathJSON.String
		}
		reps = append(reps, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reps: %w", err)
	}
	return reps, nil
}

// DeleteSessionsBefore removes sessions that started before the cutoff,
// cascading to their reps. Returns the number of sessions removed.
func (s *SessionStore) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE started_unix_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete old sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted sessions: %w", err)
	}
	if n > 0 {
		monitoring.Logf("[storage] pruned %d sessions older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// nullText maps the empty string to NULL.
func nullText(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
