package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// marshalEngagement converts engagement metadata to JSON TEXT for the
// sessions.engagement column.
// Uses json.Encoder with HTML escaping disabled so stored text matches
// what golden transcripts render byte for byte.
func marshalEngagement(meta quiz.EngagementMetadata) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("marshal engagement: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalEngagement parses the engagement column back into metadata.
// Empty and '{}' columns yield the zero value.
func unmarshalEngagement(data string) (quiz.EngagementMetadata, error) {
	var meta quiz.EngagementMetadata
	if data == "" || data == "{}" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return quiz.EngagementMetadata{}, fmt.Errorf("unmarshal engagement: %w", err)
	}
	return meta, nil
}

// marshalStrings converts a string slice to JSON TEXT for the
// questions.options and rules.patterns columns.
func marshalStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalStrings parses a JSON TEXT column into a string slice.
// Empty and '[]' columns yield nil.
func unmarshalStrings(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	return values, nil
}

// toMillis converts a wall-clock timestamp to the epoch-millisecond
// form used by every timestamp column.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts an epoch-millisecond column back to UTC time.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
