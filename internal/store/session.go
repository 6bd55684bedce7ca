package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pasteur222/quizflow/internal/quiz"
)

const sessionColumns = `id, participant_id, current_index, score, status, started_at, last_activity_at, version, engagement`

// SessionWrite is one atomic session mutation: the session row update
// plus the answer rows that belong to the same turn. Session.Version
// must hold the version the writer loaded; the write fails with
// ErrVersionMismatch when another writer got there first.
type SessionWrite struct {
	Session      quiz.Session
	Answers      []quiz.AnswerRecord // upserted alongside the session row
	ClearAnswers bool                // delete existing answer rows first (restart)
}

// InsertSession writes a newly created session row.
// New sessions start with Version 1 and an empty answer set.
func (s *Store) InsertSession(ctx context.Context, sess quiz.Session) error {
	engagementJSON, err := marshalEngagement(sess.Engagement)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, participant_id, current_index, score, status, started_at, last_activity_at, version, engagement)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		sess.ParticipantID,
		sess.CurrentIndex,
		sess.Score,
		string(sess.Status),
		toMillis(sess.StartedAt),
		toMillis(sess.LastActivityAt),
		sess.Version,
		engagementJSON,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID with its answers attached.
// Returns ErrNotFound if no such session exists.
func (s *Store) GetSession(ctx context.Context, id string) (quiz.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = ?
	`, id)

	sess, err := scanSessionRow(row)
	if err != nil {
		return quiz.Session{}, err
	}

	if err := s.attachAnswers(ctx, &sess); err != nil {
		return quiz.Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// LatestActiveSession retrieves the most recently started active
// session for a participant, answers attached.
// Returns ErrNotFound when the participant has no active session.
func (s *Store) LatestActiveSession(ctx context.Context, participantID string) (quiz.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE participant_id = ? AND status = 'active'
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, participantID)

	sess, err := scanSessionRow(row)
	if err != nil {
		return quiz.Session{}, err
	}

	if err := s.attachAnswers(ctx, &sess); err != nil {
		return quiz.Session{}, fmt.Errorf("latest active session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every session for a participant, most recent
// first, without answers attached.
//
// Returns an empty slice (not nil) when the participant has none.
func (s *Store) ListSessions(ctx context.Context, participantID string) ([]quiz.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE participant_id = ?
		ORDER BY started_at DESC, id COLLATE BINARY DESC
	`, participantID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []quiz.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	// Return empty slice instead of nil
	if sessions == nil {
		sessions = []quiz.Session{}
	}

	return sessions, nil
}

// CommitSession atomically persists one session mutation: the session
// row update conditioned on the loaded version, plus the turn's answer
// rows, in a single transaction.
//
// The version comparison is the concurrency control for the whole
// system: the UPDATE claims the version slot, and zero rows affected
// means either the row is gone (ErrNotFound) or another writer won the
// race (ErrVersionMismatch). On success the stored version is
// Session.Version + 1.
func (s *Store) CommitSession(ctx context.Context, w SessionWrite) error {
	engagementJSON, err := marshalEngagement(w.Session.Engagement)
	if err != nil {
		return fmt.Errorf("commit session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Step 1: conditional update claims the version slot
	result, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET current_index = ?, score = ?, status = ?, started_at = ?,
		    last_activity_at = ?, engagement = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		w.Session.CurrentIndex,
		w.Session.Score,
		string(w.Session.Status),
		toMillis(w.Session.StartedAt),
		toMillis(w.Session.LastActivityAt),
		engagementJSON,
		w.Session.ID,
		w.Session.Version,
	)
	if err != nil {
		return fmt.Errorf("commit session: update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("commit session: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing session from a lost version race.
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sessions WHERE id = ?`, w.Session.ID,
		).Scan(&count); err != nil {
			return fmt.Errorf("commit session: check existence: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("commit session %s: %w", w.Session.ID, ErrNotFound)
		}
		return fmt.Errorf("commit session %s: %w", w.Session.ID, ErrVersionMismatch)
	}

	// Step 2: answer rows ride in the same transaction
	if w.ClearAnswers {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM answers WHERE session_id = ?`, w.Session.ID,
		); err != nil {
			return fmt.Errorf("commit session: clear answers: %w", err)
		}
	}

	for _, rec := range w.Answers {
		if err := upsertAnswerTx(ctx, tx, w.Session.ID, rec); err != nil {
			return fmt.Errorf("commit session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: commit: %w", err)
	}

	return nil
}

// UpdateSessionStatus flips a session's status without a version
// condition. Used for administrative transitions (interrupted,
// abandoned) that must land even when the loaded version is stale.
// The version still increments so readers observe the mutation.
func (s *Store) UpdateSessionStatus(ctx context.Context, id string, status quiz.SessionStatus, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = ?, last_activity_at = ?, version = version + 1
		WHERE id = ?
	`, string(status), toMillis(now), id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session status: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update session status %s: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteSession removes a session row; answer rows cascade.
// Returns ErrNotFound if no such session exists.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}

	return nil
}

// attachAnswers loads a session's answer rows into its Answers map.
func (s *Store) attachAnswers(ctx context.Context, sess *quiz.Session) error {
	records, err := s.ListAnswers(ctx, sess.ID)
	if err != nil {
		return err
	}

	sess.Answers = make(map[string]quiz.AnswerRecord, len(records))
	for _, rec := range records {
		sess.Answers[rec.QuestionID] = rec
	}
	return nil
}

// scanSession scans a row into a Session struct (answers not attached).
func scanSession(rows *sql.Rows) (quiz.Session, error) {
	var sess quiz.Session
	var status string
	var startedAt, lastActivity int64
	var engagementJSON string

	if err := rows.Scan(
		&sess.ID, &sess.ParticipantID, &sess.CurrentIndex, &sess.Score, &status,
		&startedAt, &lastActivity, &sess.Version, &engagementJSON,
	); err != nil {
		return quiz.Session{}, fmt.Errorf("scan session: %w", err)
	}

	sess.Status = quiz.SessionStatus(status)
	sess.StartedAt = fromMillis(startedAt)
	sess.LastActivityAt = fromMillis(lastActivity)

	engagement, err := unmarshalEngagement(engagementJSON)
	if err != nil {
		return quiz.Session{}, err
	}
	sess.Engagement = engagement

	return sess, nil
}

// scanSessionRow scans a single row into a Session struct.
// Maps sql.ErrNoRows onto ErrNotFound.
func scanSessionRow(row *sql.Row) (quiz.Session, error) {
	var sess quiz.Session
	var status string
	var startedAt, lastActivity int64
	var engagementJSON string

	err := row.Scan(
		&sess.ID, &sess.ParticipantID, &sess.CurrentIndex, &sess.Score, &status,
		&startedAt, &lastActivity, &sess.Version, &engagementJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Session{}, ErrNotFound
	}
	if err != nil {
		return quiz.Session{}, fmt.Errorf("scan session: %w", err)
	}

	sess.Status = quiz.SessionStatus(status)
	sess.StartedAt = fromMillis(startedAt)
	sess.LastActivityAt = fromMillis(lastActivity)

	engagement, err := unmarshalEngagement(engagementJSON)
	if err != nil {
		return quiz.Session{}, err
	}
	sess.Engagement = engagement

	return sess, nil
}
