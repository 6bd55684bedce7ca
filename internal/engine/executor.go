package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pasteur222/quizflow/internal/quiz"
	"github.com/pasteur222/quizflow/internal/store"
)

// TxFunc is the business function run inside one held lease. It
// receives the session state read fresh inside the lease and mutates
// it in place; the executor persists the mutation afterwards.
//
// The function must NOT change Session.Version - the executor uses
// the loaded version as the compare value for the conditional write,
// and the store increments it on commit.
//
// Returning an error skips persistence entirely: the session stays in
// its last-good persisted state and the error propagates to the
// caller after the lease is released.
type TxFunc func(sess *quiz.Session) (TxResult, error)

// TxResult describes what one transaction changed beyond the session
// row itself, plus an opaque value handed back to the Execute caller.
type TxResult struct {
	// Answers are the answer rows written (upserted) in the same
	// store transaction as the session commit.
	Answers []quiz.AnswerRecord

	// ClearAnswers deletes the session's existing answer rows before
	// writing Answers. Used by restart and administrative reset.
	ClearAnswers bool

	// Value is the business result (e.g. the reply to send).
	Value any
}

// errLeaseHeld signals a failed acquisition within the retry loop.
// Never escapes Execute.
var errLeaseHeld = errors.New("lease held")

// Executor wraps session mutations in the lease-serialized,
// version-checked transaction protocol.
//
// Guarantee: across all concurrent callers for the same session, at
// most one TxFunc body executes at a time, and successful completions
// are linearized - each sees the previous one's persisted state.
type Executor struct {
	store  *store.Store
	leases *LeaseManager
	retry  RetryPolicy
}

// NewExecutor creates an executor. A zero-value retry policy selects
// DefaultRetryPolicy.
func NewExecutor(st *store.Store, leases *LeaseManager, retry RetryPolicy) *Executor {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy
	}
	return &Executor{store: st, leases: leases, retry: retry}
}

// Execute runs fn for the session under the transaction protocol.
//
// Per attempt: (1) acquire the lease; on contention back off
// attempt x BaseDelay and retry up to MaxAttempts, then surface
// LOCK_UNAVAILABLE. (2) Load the session; a missing row is
// SESSION_NOT_FOUND. (3) Run fn; an fn error skips persistence and
// propagates after release. (4) Commit via the version-conditioned
// write; a mismatch means someone wrote despite the lease - checked
// defensively and retried from step 1, surfacing
// CONCURRENT_MODIFICATION on exhaustion. (5) Release the lease in a
// deferred block regardless of how the attempt exits.
func (e *Executor) Execute(ctx context.Context, sessionID, operation string, fn TxFunc) (TxResult, error) {
	var sawVersionRace bool

	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			slog.Debug("transaction retry",
				"session_id", sessionID,
				"operation", operation,
				"attempt", attempt,
			)
			if err := e.retry.Sleep(ctx, attempt-1); err != nil {
				return TxResult{}, err
			}
		}

		result, err := e.attempt(ctx, sessionID, operation, fn)
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, errLeaseHeld):
			continue
		case errors.Is(err, store.ErrVersionMismatch):
			// Should not happen under correct lease use; retry from a
			// fresh read rather than corrupting state.
			sawVersionRace = true
			slog.Warn("version race under held lease",
				"session_id", sessionID,
				"operation", operation,
				"attempt", attempt,
			)
			continue
		default:
			return TxResult{}, err
		}
	}

	if sawVersionRace {
		return TxResult{}, NewConcurrentModificationError(sessionID, e.retry.MaxAttempts)
	}
	return TxResult{}, NewLockUnavailableError(sessionID, e.retry.MaxAttempts)
}

// attempt runs one iteration of the transaction protocol.
func (e *Executor) attempt(ctx context.Context, sessionID, operation string, fn TxFunc) (TxResult, error) {
	leaseID, ok, err := e.leases.Acquire(ctx, sessionID, operation)
	if err != nil {
		return TxResult{}, err
	}
	if !ok {
		return TxResult{}, errLeaseHeld
	}

	// Release unconditionally, however the attempt exits, so a
	// transient failure never leaves the session locked beyond the
	// TTL. A false return here just means the lease expired under us.
	defer func() {
		if _, relErr := e.leases.Release(ctx, sessionID, leaseID); relErr != nil {
			slog.Warn("lease release failed",
				"session_id", sessionID,
				"lease_id", leaseID,
				"error", relErr,
			)
		}
	}()

	// Read fresh inside the lease - never act on state loaded before
	// the acquire boundary.
	sess, err := e.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return TxResult{}, NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return TxResult{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	result, err := fn(&sess)
	if err != nil {
		return TxResult{}, err
	}

	commitErr := e.store.CommitSession(ctx, store.SessionWrite{
		Session:      sess,
		Answers:      result.Answers,
		ClearAnswers: result.ClearAnswers,
	})
	if errors.Is(commitErr, store.ErrNotFound) {
		return TxResult{}, NewSessionNotFoundError(sessionID)
	}
	if commitErr != nil {
		// ErrVersionMismatch passes through for the retry loop.
		return TxResult{}, commitErr
	}

	slog.Debug("transaction committed",
		"session_id", sessionID,
		"operation", operation,
		"version", sess.Version+1,
	)
	return result, nil
}
