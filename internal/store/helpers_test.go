package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pasteur222/quizflow/internal/quiz"
)

var testEpoch = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func makeSession(id, participantID string, at time.Time) quiz.Session {
	return quiz.Session{
		ID:             id,
		ParticipantID:  participantID,
		Status:         quiz.StatusActive,
		StartedAt:      at,
		LastActivityAt: at,
		Version:        1,
		Answers:        map[string]quiz.AnswerRecord{},
	}
}
