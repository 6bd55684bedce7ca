package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pasteur222/quizflow/internal/quiz"
	"github.com/pasteur222/quizflow/internal/store"
)

// noQuestionsReply is shown when the pack has no visible questions -
// an administrator problem, never blamed on the participant. The
// session is left active so a fixed pack resumes it.
const noQuestionsReply = "Aucune question n'est configurée pour ce quiz. Contactez l'administrateur."

// Reply is what the caller sends back to the participant.
type Reply struct {
	SessionID string
	Text      string
	Completed bool
}

// Service is the facade collaborators call. It wires recovery, the
// transaction executor, and the question flow into the single entry
// point the message router needs.
type Service struct {
	store    *store.Store
	clock    Clock
	ids      IDGenerator
	leases   *LeaseManager
	executor *Executor
	recovery *Recovery
	restart  map[string]bool
}

// Option configures a Service.
type Option func(*serviceConfig)

type serviceConfig struct {
	clock        Clock
	ids          IDGenerator
	retry        RetryPolicy
	leaseTTL     time.Duration
	restartWords []string
}

// WithClock injects a clock (tests use testutil.ManualClock).
func WithClock(c Clock) Option {
	return func(cfg *serviceConfig) { cfg.clock = c }
}

// WithIDGenerator injects an ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(cfg *serviceConfig) { cfg.ids = g }
}

// WithRetryPolicy overrides the executor retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(cfg *serviceConfig) { cfg.retry = p }
}

// WithLeaseTTL overrides the lease duration.
func WithLeaseTTL(ttl time.Duration) Option {
	return func(cfg *serviceConfig) { cfg.leaseTTL = ttl }
}

// WithRestartKeywords replaces the messages that reset a session in
// place. Matching is against the normalized message text.
func WithRestartKeywords(words ...string) Option {
	return func(cfg *serviceConfig) { cfg.restartWords = words }
}

// NewService creates the facade over a store.
func NewService(st *store.Store, opts ...Option) *Service {
	cfg := serviceConfig{
		clock:        SystemClock{},
		ids:          UUIDGenerator{},
		retry:        DefaultRetryPolicy,
		leaseTTL:     DefaultLeaseTTL,
		restartWords: []string{"restart", "recommencer"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	restart := make(map[string]bool, len(cfg.restartWords))
	for _, w := range cfg.restartWords {
		restart[quiz.NormalizeAnswer(w)] = true
	}

	leases := NewLeaseManager(st, cfg.clock, cfg.ids, cfg.leaseTTL)
	return &Service{
		store:    st,
		clock:    cfg.clock,
		ids:      cfg.ids,
		leases:   leases,
		executor: NewExecutor(st, leases, cfg.retry),
		recovery: NewRecovery(st, cfg.clock, cfg.ids),
		restart:  restart,
	}
}

// Leases exposes the lease manager for operational tooling (sweep,
// diagnostics).
func (s *Service) Leases() *LeaseManager {
	return s.leases
}

// HandleAnswer is the single entry point for an inbound message:
// recovery resolves the session, the executor serializes the
// mutation, the flow validates and advances, and the reply carries
// the next prompt or the completion summary.
//
// User input errors never surface as system errors - they become a
// clarification reply and the session is left untouched. Concurrency
// errors are retried internally and only exhaustion propagates.
func (s *Service) HandleAnswer(ctx context.Context, participantID, text string) (Reply, error) {
	if s.restart[quiz.NormalizeAnswer(text)] {
		return s.RestartSession(ctx, participantID)
	}

	questions, err := s.store.ListQuestions(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("load questions: %w", err)
	}

	sess, created, err := s.recovery.Resolve(ctx, participantID)
	if err != nil {
		return Reply{}, err
	}
	if created {
		// The message that created the session opens the quiz; it is
		// not consumed as an answer.
		return s.firstPrompt(sess, questions), nil
	}

	result, err := s.executor.Execute(ctx, sess.ID, "answer", func(fresh *quiz.Session) (TxResult, error) {
		visible := quiz.VisibleQuestions(questions, fresh.Answers)
		if len(visible) == 0 {
			return TxResult{}, NewNoVisibleQuestionsError(fresh.ID)
		}

		prompt, done := NextPrompt(fresh, questions)
		if done {
			// Past the end of the visible list (shrunken pack, or a
			// concurrent completion); close it out rather than
			// prompting into the void. A status that is already
			// terminal stays as it is.
			if !fresh.Status.Terminal() {
				fresh.Status = quiz.StatusCompleted
			}
			fresh.LastActivityAt = s.clock.Now()
			return TxResult{Value: Reply{SessionID: fresh.ID, Text: FormatCompletion(fresh), Completed: true}}, nil
		}

		outcome, err := SubmitAnswer(fresh, questions, prompt.Question.ID, text, s.clock.Now())
		if err != nil {
			return TxResult{}, err
		}

		reply := Reply{SessionID: fresh.ID}
		if outcome.Completed {
			reply.Text = FormatCompletion(fresh)
			reply.Completed = true
		} else {
			reply.Text = FormatPrompt(*outcome.Next)
		}

		tx := TxResult{Value: reply}
		if outcome.Record != nil {
			tx.Answers = []quiz.AnswerRecord{*outcome.Record}
		}
		return tx, nil
	})
	if err != nil {
		return s.recoverReply(ctx, sess.ID, questions, err)
	}
	return result.Value.(Reply), nil
}

// RestartSession resets the participant's active session in place:
// same row, index and score zeroed, answers wiped, version bumped.
// Never creates a duplicate row for the participant. Any lease left
// by a dead holder is force-released first, best-effort.
func (s *Service) RestartSession(ctx context.Context, participantID string) (Reply, error) {
	questions, err := s.store.ListQuestions(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("load questions: %w", err)
	}

	sess, created, err := s.recovery.Resolve(ctx, participantID)
	if err != nil {
		return Reply{}, err
	}
	if created {
		return s.firstPrompt(sess, questions), nil
	}

	if _, err := s.leases.ForceRelease(ctx, sess.ID); err != nil {
		slog.Warn("restart lease release failed", "session_id", sess.ID, "error", err)
	}

	result, err := s.executor.Execute(ctx, sess.ID, "restart", func(fresh *quiz.Session) (TxResult, error) {
		s.resetInPlace(fresh)

		visible := quiz.VisibleQuestions(questions, fresh.Answers)
		if len(visible) == 0 {
			return TxResult{}, NewNoVisibleQuestionsError(fresh.ID)
		}
		prompt := Prompt{Question: visible[0], Number: 1, Total: len(visible)}
		return TxResult{
			ClearAnswers: true,
			Value:        Reply{SessionID: fresh.ID, Text: FormatPrompt(prompt)},
		}, nil
	})
	if err != nil {
		return s.recoverReply(ctx, sess.ID, questions, err)
	}

	slog.Info("session restarted", "session_id", sess.ID, "participant_id", participantID)
	return result.Value.(Reply), nil
}

// AdminResetSession ends any active lease, deletes the answer rows,
// and resets the participant's active session to its initial state.
func (s *Service) AdminResetSession(ctx context.Context, participantID string) error {
	sess, err := s.store.LatestActiveSession(ctx, participantID)
	if errors.Is(err, store.ErrNotFound) {
		return &FlowError{
			Code:    ErrCodeSessionNotFound,
			Message: fmt.Sprintf("participant %s has no active session", participantID),
		}
	}
	if err != nil {
		return fmt.Errorf("resolve session for %s: %w", participantID, err)
	}

	if _, err := s.leases.ForceRelease(ctx, sess.ID); err != nil {
		slog.Warn("reset lease release failed", "session_id", sess.ID, "error", err)
	}

	_, err = s.executor.Execute(ctx, sess.ID, "admin-reset", func(fresh *quiz.Session) (TxResult, error) {
		s.resetInPlace(fresh)
		return TxResult{ClearAnswers: true}, nil
	})
	if err != nil {
		return err
	}

	slog.Info("session reset", "session_id", sess.ID, "participant_id", participantID)
	return nil
}

// resetInPlace returns a session to its initial state. Version is
// untouched; the commit bumps it, so readers observe the reset as a
// normal mutation.
func (s *Service) resetInPlace(sess *quiz.Session) {
	now := s.clock.Now()
	sess.CurrentIndex = 0
	sess.Score = 0
	sess.Status = quiz.StatusActive
	sess.StartedAt = now
	sess.LastActivityAt = now
	sess.Engagement = quiz.EngagementMetadata{}
	sess.Answers = map[string]quiz.AnswerRecord{}
}

// firstPrompt builds the opening reply for a fresh session.
func (s *Service) firstPrompt(sess quiz.Session, questions []quiz.Question) Reply {
	visible := quiz.VisibleQuestions(questions, sess.Answers)
	if len(visible) == 0 {
		slog.Error("question pack has no visible questions", "session_id", sess.ID)
		return Reply{SessionID: sess.ID, Text: noQuestionsReply}
	}
	prompt := Prompt{Question: visible[0], Number: 1, Total: len(visible)}
	return Reply{SessionID: sess.ID, Text: FormatPrompt(prompt)}
}

// recoverReply converts a transaction error into the right caller
// outcome: user input errors re-prompt with guidance, configuration
// errors produce an administrator-facing reply, concurrency and
// integrity errors propagate, and anything abnormal marks the session
// interrupted before propagating.
func (s *Service) recoverReply(ctx context.Context, sessionID string, questions []quiz.Question, err error) (Reply, error) {
	var fe *FlowError
	if errors.As(err, &fe) {
		switch fe.Code {
		case ErrCodeUnexpectedQuestion, ErrCodeInvalidAnswerFormat:
			return s.repromptReply(ctx, sessionID, questions, fe), nil

		case ErrCodeNoVisibleQuestions:
			slog.Error("question pack has no visible questions", "session_id", sessionID)
			return Reply{SessionID: sessionID, Text: noQuestionsReply}, nil

		case ErrCodeLockUnavailable, ErrCodeConcurrentModification:
			slog.Warn("session contended past retry budget",
				"session_id", sessionID,
				"code", fe.Code,
				"attempts", fe.Attempts,
			)
			return Reply{}, err

		case ErrCodeSessionNotFound:
			slog.Error("session row missing", "session_id", sessionID)
			return Reply{}, err
		}
	}

	// Abnormal failure during the transaction: mark the session
	// interrupted so the next interaction gets a clean start instead
	// of resuming half-applied state.
	if markErr := s.recovery.MarkInterrupted(ctx, sessionID); markErr != nil {
		slog.Error("interrupted marking failed", "session_id", sessionID, "error", markErr)
	}
	return Reply{}, err
}

// repromptReply rebuilds the current prompt with a short guidance
// line. The failed submission persisted nothing, so the reloaded
// session still points at the same question.
func (s *Service) repromptReply(ctx context.Context, sessionID string, questions []quiz.Question, fe *FlowError) Reply {
	guidance := "Réponse non reconnue."
	if fe.Code == ErrCodeUnexpectedQuestion {
		guidance = "Reprenons là où nous en étions."
	} else if strings.Contains(fe.Message, "required") {
		guidance = "Cette question est obligatoire."
	}

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Reply{SessionID: sessionID, Text: guidance}
	}

	prompt, done := NextPrompt(&sess, questions)
	if done {
		return Reply{SessionID: sessionID, Text: guidance}
	}
	return Reply{SessionID: sessionID, Text: guidance + "\n" + FormatPrompt(prompt)}
}
