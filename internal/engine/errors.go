package engine

import (
	"errors"
	"fmt"
)

// FlowError represents an error detected while driving a session.
//
// The taxonomy separates three propagation classes:
//   - User input errors (UNEXPECTED_QUESTION, INVALID_ANSWER_FORMAT):
//     recovered locally by re-prompting; the session is left untouched.
//   - Concurrency errors (LOCK_UNAVAILABLE, CONCURRENT_MODIFICATION):
//     retried internally, surfaced only after exhausting attempts; the
//     session stays in its last-good persisted state.
//   - Integrity/configuration errors (SESSION_NOT_FOUND,
//     NO_VISIBLE_QUESTIONS): surfaced to the operator.
type FlowError struct {
	// Code identifies the error category.
	Code FlowErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session, when known.
	SessionID string

	// QuestionID identifies the question involved (input errors).
	QuestionID string

	// Attempts records how many executor attempts were spent
	// (concurrency errors).
	Attempts int
}

// FlowErrorCode categorizes flow errors.
type FlowErrorCode string

const (
	// ErrCodeLockUnavailable indicates lease contention exhausted the
	// retry budget.
	ErrCodeLockUnavailable FlowErrorCode = "LOCK_UNAVAILABLE"

	// ErrCodeConcurrentModification indicates the version-checked
	// commit lost a race on every attempt.
	ErrCodeConcurrentModification FlowErrorCode = "CONCURRENT_MODIFICATION"

	// ErrCodeSessionNotFound indicates the session row is missing.
	ErrCodeSessionNotFound FlowErrorCode = "SESSION_NOT_FOUND"

	// ErrCodeUnexpectedQuestion indicates an answer to a question that
	// is not the session's current one (stale client prompt).
	ErrCodeUnexpectedQuestion FlowErrorCode = "UNEXPECTED_QUESTION"

	// ErrCodeInvalidAnswerFormat indicates the answer is outside the
	// question type's accepted vocabulary.
	ErrCodeInvalidAnswerFormat FlowErrorCode = "INVALID_ANSWER_FORMAT"

	// ErrCodeNoVisibleQuestions indicates the filtered question list
	// is empty - a pack configuration problem, not a user error.
	ErrCodeNoVisibleQuestions FlowErrorCode = "NO_VISIBLE_QUESTIONS"
)

// Error implements the error interface.
func (e *FlowError) Error() string {
	switch {
	case e.SessionID != "" && e.QuestionID != "":
		return fmt.Sprintf("%s: %s (session=%s, question=%s)", e.Code, e.Message, e.SessionID, e.QuestionID)
	case e.SessionID != "" && e.Attempts > 0:
		return fmt.Sprintf("%s: %s (session=%s, attempts=%d)", e.Code, e.Message, e.SessionID, e.Attempts)
	case e.SessionID != "":
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.SessionID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsUserInputError reports whether err is recoverable by re-prompting
// the participant. Uses errors.As to handle wrapped errors.
func IsUserInputError(err error) bool {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code == ErrCodeUnexpectedQuestion || fe.Code == ErrCodeInvalidAnswerFormat
	}
	return false
}

// IsLockUnavailable reports whether err is exhausted lease contention.
func IsLockUnavailable(err error) bool {
	return hasCode(err, ErrCodeLockUnavailable)
}

// IsConcurrentModification reports whether err is an exhausted
// version race.
func IsConcurrentModification(err error) bool {
	return hasCode(err, ErrCodeConcurrentModification)
}

// IsSessionNotFound reports whether err is a missing session row.
func IsSessionNotFound(err error) bool {
	return hasCode(err, ErrCodeSessionNotFound)
}

// IsNoVisibleQuestions reports whether err is an empty visible list.
func IsNoVisibleQuestions(err error) bool {
	return hasCode(err, ErrCodeNoVisibleQuestions)
}

func hasCode(err error, code FlowErrorCode) bool {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// NewLockUnavailableError creates a FlowError for exhausted lease
// contention.
func NewLockUnavailableError(sessionID string, attempts int) *FlowError {
	return &FlowError{
		Code:      ErrCodeLockUnavailable,
		Message:   "session lease unavailable after retries",
		SessionID: sessionID,
		Attempts:  attempts,
	}
}

// NewConcurrentModificationError creates a FlowError for an exhausted
// version race.
func NewConcurrentModificationError(sessionID string, attempts int) *FlowError {
	return &FlowError{
		Code:      ErrCodeConcurrentModification,
		Message:   "session modified concurrently on every attempt",
		SessionID: sessionID,
		Attempts:  attempts,
	}
}

// NewSessionNotFoundError creates a FlowError for a missing session.
func NewSessionNotFoundError(sessionID string) *FlowError {
	return &FlowError{
		Code:      ErrCodeSessionNotFound,
		Message:   "session does not exist",
		SessionID: sessionID,
	}
}

// NewUnexpectedQuestionError creates a FlowError for an answer to a
// non-current question.
func NewUnexpectedQuestionError(sessionID, questionID, currentID string) *FlowError {
	return &FlowError{
		Code:       ErrCodeUnexpectedQuestion,
		Message:    fmt.Sprintf("answer targets question %s but the current question is %s", questionID, currentID),
		SessionID:  sessionID,
		QuestionID: questionID,
	}
}

// NewInvalidAnswerError creates a FlowError for an answer outside the
// accepted vocabulary.
func NewInvalidAnswerError(sessionID, questionID, reason string) *FlowError {
	return &FlowError{
		Code:       ErrCodeInvalidAnswerFormat,
		Message:    reason,
		SessionID:  sessionID,
		QuestionID: questionID,
	}
}

// NewNoVisibleQuestionsError creates a FlowError for an empty visible
// question list.
func NewNoVisibleQuestionsError(sessionID string) *FlowError {
	return &FlowError{
		Code:      ErrCodeNoVisibleQuestions,
		Message:   "no questions are visible for this session",
		SessionID: sessionID,
	}
}
