package harness

import (
	"github.com/pasteur222/quizflow/internal/quiz"
)

// Scenario defines a conformance test conversation.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Pack is the CUE pack directory, relative to the scenario file.
	Pack string `yaml:"pack"`

	// Participant identifies the simulated participant.
	Participant string `yaml:"participant"`

	// Steps are the messages delivered in order.
	Steps []Step `yaml:"steps"`

	// Final asserts on the session row after the last step.
	Final *FinalState `yaml:"final,omitempty"`
}

// Step delivers one inbound message.
type Step struct {
	// Send is the message text.
	Send string `yaml:"send"`

	// AdvanceMs moves the manual clock forward before the message is
	// delivered, simulating the participant's thinking time.
	AdvanceMs int64 `yaml:"advance_ms,omitempty"`

	// Expect validates the reply. If nil, the reply only has to
	// arrive without error.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected reply behavior.
type ExpectClause struct {
	// Contains are substrings the reply text must include.
	Contains []string `yaml:"contains,omitempty"`

	// Completed, when set, must equal the reply's completion flag.
	Completed *bool `yaml:"completed,omitempty"`
}

// FinalState asserts on the persisted session after the conversation.
// Unset fields are not checked.
type FinalState struct {
	Status     string `yaml:"status,omitempty"`
	Score      *int   `yaml:"score,omitempty"`
	Version    *int64 `yaml:"version,omitempty"`
	Answers    *int   `yaml:"answers,omitempty"`
	Engagement *int   `yaml:"engagement,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates every expectation held.
	Pass bool

	// Transcript holds the conversation, alternating ">> " sends and
	// "<< " replies, in order.
	Transcript []string

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string

	// Session is the final session row, when one was created.
	Session *quiz.Session
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records an expectation failure and fails the result.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
