package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pasteur222/quizflow/internal/quiz"
	"github.com/pasteur222/quizflow/internal/store"
)

// Recovery resolves which session a participant's message belongs to.
//
// A participant interacting again after a crash or an abandoned
// request resumes their most recent active session instead of
// spawning a duplicate row. Sessions left half-applied by an abnormal
// failure are marked interrupted so resumption never picks them up.
type Recovery struct {
	store *store.Store
	clock Clock
	ids   IDGenerator
}

// NewRecovery creates a recovery service.
func NewRecovery(st *store.Store, clock Clock, ids IDGenerator) *Recovery {
	return &Recovery{store: st, clock: clock, ids: ids}
}

// Resolve returns the participant's active session, creating one when
// none exists. created reports which path was taken.
//
// Only status=active sessions are resumable: completed, abandoned,
// and interrupted sessions are terminal for recovery purposes, so a
// participant whose last session ended abnormally gets a fresh start.
func (r *Recovery) Resolve(ctx context.Context, participantID string) (quiz.Session, bool, error) {
	sess, err := r.store.LatestActiveSession(ctx, participantID)
	if err == nil {
		slog.Debug("resuming active session",
			"session_id", sess.ID,
			"participant_id", participantID,
			"current_index", sess.CurrentIndex,
		)
		return sess, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return quiz.Session{}, false, fmt.Errorf("resolve session for %s: %w", participantID, err)
	}

	sess = r.newSession(participantID)
	if err := r.store.InsertSession(ctx, sess); err != nil {
		return quiz.Session{}, false, fmt.Errorf("create session for %s: %w", participantID, err)
	}

	slog.Info("session created",
		"session_id", sess.ID,
		"participant_id", participantID,
	)
	return sess, true, nil
}

// MarkInterrupted flips a session to interrupted so the next
// interaction starts clean instead of silently resuming half-applied
// state. Unconditional on version: the marking must land even when
// the caller's loaded state is stale.
func (r *Recovery) MarkInterrupted(ctx context.Context, sessionID string) error {
	err := r.store.UpdateSessionStatus(ctx, sessionID, quiz.StatusInterrupted, r.clock.Now())
	if errors.Is(err, store.ErrNotFound) {
		return NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return fmt.Errorf("mark session %s interrupted: %w", sessionID, err)
	}

	slog.Warn("session marked interrupted", "session_id", sessionID)
	return nil
}

// newSession builds the initial row for a participant.
func (r *Recovery) newSession(participantID string) quiz.Session {
	now := r.clock.Now()
	return quiz.Session{
		ID:             r.ids.SessionID(),
		ParticipantID:  participantID,
		CurrentIndex:   0,
		Score:          0,
		Status:         quiz.StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
		Version:        1,
		Answers:        map[string]quiz.AnswerRecord{},
	}
}
