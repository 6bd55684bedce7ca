package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// PutQuestion writes a question row, replacing any existing question
// with the same ID. Pack imports are idempotent re-runs.
func (s *Store) PutQuestion(ctx context.Context, q quiz.Question) error {
	optionsJSON, err := marshalStrings(q.Options)
	if err != nil {
		return fmt.Errorf("put question: %w", err)
	}

	var correct any
	if q.CorrectAnswer != nil {
		correct = *q.CorrectAnswer
	}

	var dependsOn, dependsValue any
	if q.Conditional != nil {
		dependsOn = q.Conditional.DependsOn
		dependsValue = q.Conditional.RequiredValue
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions
		(id, text, type, order_index, required, correct_answer, points, options, depends_on, depends_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text           = excluded.text,
			type           = excluded.type,
			order_index    = excluded.order_index,
			required       = excluded.required,
			correct_answer = excluded.correct_answer,
			points         = excluded.points,
			options        = excluded.options,
			depends_on     = excluded.depends_on,
			depends_value  = excluded.depends_value
	`,
		q.ID,
		q.Text,
		string(q.Type),
		q.OrderIndex,
		q.Required,
		correct,
		q.Points,
		optionsJSON,
		dependsOn,
		dependsValue,
	)
	if err != nil {
		return fmt.Errorf("put question: %w", err)
	}

	return nil
}

// GetQuestion retrieves a single question by ID.
// Returns ErrNotFound if no such question exists.
func (s *Store) GetQuestion(ctx context.Context, id string) (quiz.Question, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, type, order_index, required, correct_answer, points, options, depends_on, depends_value
		FROM questions
		WHERE id = ?
	`, id)

	q, err := scanQuestionRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Question{}, ErrNotFound
	}
	return q, err
}

// ListQuestions returns the full question pack ordered by
// (order_index, id). The engine recomputes visibility over this list
// on every turn.
//
// Returns an empty slice (not nil) if no questions are stored.
func (s *Store) ListQuestions(ctx context.Context) ([]quiz.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, type, order_index, required, correct_answer, points, options, depends_on, depends_value
		FROM questions
		ORDER BY order_index ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []quiz.Question
	for rows.Next() {
		q, err := scanQuestionRow(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	// Return empty slice instead of nil
	if questions == nil {
		questions = []quiz.Question{}
	}

	return questions, nil
}

// DeleteQuestion removes a question row.
// Returns ErrNotFound if no such question exists.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("delete question %s: %w", id, ErrNotFound)
	}

	return nil
}

// rowScanner covers *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanQuestionRow scans a question row, reassembling the nullable
// correct_answer and conditional columns into their pointer forms.
func scanQuestionRow(row rowScanner) (quiz.Question, error) {
	var q quiz.Question
	var typ string
	var correct sql.NullBool
	var optionsJSON string
	var dependsOn, dependsValue sql.NullString

	if err := row.Scan(
		&q.ID, &q.Text, &typ, &q.OrderIndex, &q.Required,
		&correct, &q.Points, &optionsJSON, &dependsOn, &dependsValue,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.Question{}, err
		}
		return quiz.Question{}, fmt.Errorf("scan question: %w", err)
	}

	q.Type = quiz.QuestionType(typ)

	if correct.Valid {
		value := correct.Bool
		q.CorrectAnswer = &value
	}

	options, err := unmarshalStrings(optionsJSON)
	if err != nil {
		return quiz.Question{}, err
	}
	q.Options = options

	if dependsOn.Valid {
		q.Conditional = &quiz.ConditionalLogic{
			DependsOn:     dependsOn.String,
			RequiredValue: dependsValue.String,
		}
	}

	return q, nil
}
