package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// UpsertAnswer writes an answer record, replacing any existing record
// for the same (session, question) pair. Overwrite-in-place keeps
// retried submissions from appending duplicates.
func (s *Store) UpsertAnswer(ctx context.Context, sessionID string, rec quiz.AnswerRecord) error {
	if err := upsertAnswerTx(ctx, s.db, sessionID, rec); err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

// execer covers both *sql.DB and *sql.Tx so answer writes can ride in
// a session commit transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertAnswerTx(ctx context.Context, ex execer, sessionID string, rec quiz.AnswerRecord) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO answers
		(session_id, question_id, raw_answer, normalized, is_correct, points_awarded, time_spent_ms, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, question_id) DO UPDATE SET
			raw_answer     = excluded.raw_answer,
			normalized     = excluded.normalized,
			is_correct     = excluded.is_correct,
			points_awarded = excluded.points_awarded,
			time_spent_ms  = excluded.time_spent_ms,
			answered_at    = excluded.answered_at
	`,
		sessionID,
		rec.QuestionID,
		rec.RawAnswer,
		rec.Normalized,
		rec.IsCorrect,
		rec.PointsAwarded,
		rec.TimeSpentMs,
		toMillis(rec.AnsweredAt),
	)
	if err != nil {
		return fmt.Errorf("upsert answer %s: %w", rec.QuestionID, err)
	}
	return nil
}

// ListAnswers returns a session's answer records ordered by when they
// were given, question ID breaking ties.
//
// Returns an empty slice (not nil) if the session has no answers.
func (s *Store) ListAnswers(ctx context.Context, sessionID string) ([]quiz.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, raw_answer, normalized, is_correct, points_awarded, time_spent_ms, answered_at
		FROM answers
		WHERE session_id = ?
		ORDER BY answered_at ASC, question_id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var records []quiz.AnswerRecord
	for rows.Next() {
		var rec quiz.AnswerRecord
		var answeredAt int64
		if err := rows.Scan(
			&rec.QuestionID, &rec.RawAnswer, &rec.Normalized, &rec.IsCorrect,
			&rec.PointsAwarded, &rec.TimeSpentMs, &answeredAt,
		); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		rec.AnsweredAt = fromMillis(answeredAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}

	// Return empty slice instead of nil
	if records == nil {
		records = []quiz.AnswerRecord{}
	}

	return records, nil
}

// DeleteAnswers removes every answer record for a session.
func (s *Store) DeleteAnswers(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM answers WHERE session_id = ?`, sessionID,
	); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	return nil
}
