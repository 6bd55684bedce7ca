package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pasteur222/quizflow/internal/rules"
)

// PutRule writes a response rule row, replacing any existing rule with
// the same ID. Pack imports are idempotent re-runs.
func (s *Store) PutRule(ctx context.Context, r rules.ResponseRule) error {
	patternsJSON, err := marshalStrings(r.TriggerPatterns)
	if err != nil {
		return fmt.Errorf("put rule: %w", err)
	}

	var windowStart, windowEnd any
	if r.Window != nil {
		windowStart = r.Window.Start
		windowEnd = r.Window.End
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules
		(id, patterns, use_regex, priority, response, window_start, window_end)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			patterns     = excluded.patterns,
			use_regex    = excluded.use_regex,
			priority     = excluded.priority,
			response     = excluded.response,
			window_start = excluded.window_start,
			window_end   = excluded.window_end
	`,
		r.ID,
		patternsJSON,
		r.UsesRegex,
		r.Priority,
		r.Response,
		windowStart,
		windowEnd,
	)
	if err != nil {
		return fmt.Errorf("put rule: %w", err)
	}

	return nil
}

// GetRule retrieves a single rule by ID.
// Returns ErrNotFound if no such rule exists.
func (s *Store) GetRule(ctx context.Context, id string) (rules.ResponseRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patterns, use_regex, priority, response, window_start, window_end
		FROM rules
		WHERE id = ?
	`, id)

	r, err := scanRuleRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rules.ResponseRule{}, ErrNotFound
	}
	return r, err
}

// ListRules returns every response rule ordered by (priority DESC, id)
// so callers iterate in selection-precedence order.
//
// Returns an empty slice (not nil) if no rules are stored.
func (s *Store) ListRules(ctx context.Context) ([]rules.ResponseRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patterns, use_regex, priority, response, window_start, window_end
		FROM rules
		ORDER BY priority DESC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var ruleSet []rules.ResponseRule
	for rows.Next() {
		r, err := scanRuleRow(rows)
		if err != nil {
			return nil, err
		}
		ruleSet = append(ruleSet, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}

	// Return empty slice instead of nil
	if ruleSet == nil {
		ruleSet = []rules.ResponseRule{}
	}

	return ruleSet, nil
}

// DeleteRule removes a rule row.
// Returns ErrNotFound if no such rule exists.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("delete rule %s: %w", id, ErrNotFound)
	}

	return nil
}

// scanRuleRow scans a rule row, reassembling the nullable window
// columns into their pointer form.
func scanRuleRow(row rowScanner) (rules.ResponseRule, error) {
	var r rules.ResponseRule
	var patternsJSON string
	var windowStart, windowEnd sql.NullString

	if err := row.Scan(
		&r.ID, &patternsJSON, &r.UsesRegex, &r.Priority, &r.Response,
		&windowStart, &windowEnd,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rules.ResponseRule{}, err
		}
		return rules.ResponseRule{}, fmt.Errorf("scan rule: %w", err)
	}

	patterns, err := unmarshalStrings(patternsJSON)
	if err != nil {
		return rules.ResponseRule{}, err
	}
	r.TriggerPatterns = patterns

	if windowStart.Valid {
		r.Window = &rules.TimeWindow{
			Start: windowStart.String,
			End:   windowEnd.String,
		}
	}

	return r, nil
}
