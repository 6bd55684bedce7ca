package quiz

import "time"

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	StatusActive      SessionStatus = "active"
	StatusCompleted   SessionStatus = "completed"
	StatusAbandoned   SessionStatus = "abandoned"
	StatusInterrupted SessionStatus = "interrupted"
)

// ValidStatuses defines allowed session statuses.
var ValidStatuses = map[SessionStatus]bool{
	StatusActive:      true,
	StatusCompleted:   true,
	StatusAbandoned:   true,
	StatusInterrupted: true,
}

// Terminal reports whether the status admits no further answer
// processing. Interrupted counts: an interrupted session is never
// resumed, the participant gets a fresh one.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned || s == StatusInterrupted
}

// QuestionType classifies how an answer is validated and scored.
type QuestionType string

const (
	TypePersonal   QuestionType = "personal"
	TypePreference QuestionType = "preference"
	TypeTrueFalse  QuestionType = "trueFalse"
	TypeYesNo      QuestionType = "yesNo"
)

// ValidQuestionTypes defines allowed question types.
var ValidQuestionTypes = map[QuestionType]bool{
	TypePersonal:   true,
	TypePreference: true,
	TypeTrueFalse:  true,
	TypeYesNo:      true,
}

// Graded reports whether answers of this type are scored against a
// correct answer. Personal and preference answers always count as correct.
func (t QuestionType) Graded() bool {
	return t == TypeTrueFalse || t == TypeYesNo
}

// Fixed rewards for ungraded answer types.
const (
	PersonalPoints   = 5
	PreferencePoints = 3
)

// ConditionalLogic makes a question visible only when a previously
// answered question holds a specific value.
type ConditionalLogic struct {
	DependsOn     string `json:"depends_on"`
	RequiredValue string `json:"required_value"`
}

// Question is an administrator-authored quiz question.
type Question struct {
	ID            string            `json:"id"`
	Text          string            `json:"text"`
	Type          QuestionType      `json:"type"`
	OrderIndex    int               `json:"order_index"`
	Required      bool              `json:"required"`
	CorrectAnswer *bool             `json:"correct_answer,omitempty"` // graded types only
	Points        int               `json:"points,omitempty"`
	Options       []string          `json:"options,omitempty"` // preference choices
	Conditional   *ConditionalLogic `json:"conditional,omitempty"`
}

// AnswerRecord is one accepted answer. A session holds at most one
// record per question; a repeated submission overwrites the old record.
type AnswerRecord struct {
	QuestionID    string    `json:"question_id"`
	RawAnswer     string    `json:"raw_answer"`
	Normalized    string    `json:"normalized"`
	IsCorrect     bool      `json:"is_correct"`
	PointsAwarded int       `json:"points_awarded"`
	TimeSpentMs   int64     `json:"time_spent_ms"`
	AnsweredAt    time.Time `json:"answered_at"`
}

// EngagementMetadata accumulates participation signals across a session.
type EngagementMetadata struct {
	TotalTimeMs           int64            `json:"total_time_ms"`
	PerQuestionMs         map[string]int64 `json:"per_question_ms,omitempty"`
	EngagementScore       int              `json:"engagement_score"`
	DifficultyAdjustments []string         `json:"difficulty_adjustments,omitempty"`
}

// Session is one participant's progress through the question flow.
// Version supports optimistic concurrency: every persisted mutation
// increments it, and writers compare against the version they loaded.
type Session struct {
	ID             string                  `json:"id"`
	ParticipantID  string                  `json:"participant_id"`
	CurrentIndex   int                     `json:"current_index"` // position in the visible question list
	Score          int                     `json:"score"`
	Status         SessionStatus           `json:"status"`
	StartedAt      time.Time               `json:"started_at"`
	LastActivityAt time.Time               `json:"last_activity_at"`
	Version        int64                   `json:"version"`
	Engagement     EngagementMetadata      `json:"engagement"`
	Answers        map[string]AnswerRecord `json:"answers,omitempty"` // keyed by question ID
}

// Lease is an exclusive mutation claim on a session. At most one lease
// row exists per session; holders past ExpiresAt may be displaced.
type Lease struct {
	SessionID string    `json:"session_id"`
	LeaseID   string    `json:"lease_id"`
	Holder    string    `json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
}
