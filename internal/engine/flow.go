package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/pasteur222/quizflow/internal/quiz"
)

// Prompt is the next question to show a participant, with its
// position in the currently-visible list. Number and Total always
// reflect the post-recompute visible list, so what the participant
// sees as "question 2/3" stays honest after a branching answer
// changes the total.
type Prompt struct {
	Question quiz.Question
	Number   int // 1-based position in the visible list
	Total    int // visible list length
}

// Outcome describes one accepted submission.
type Outcome struct {
	// Record is the answer written this turn; nil for a skip.
	Record *quiz.AnswerRecord

	// Skipped reports that a non-required question was passed over
	// without a record.
	Skipped bool

	// Completed reports that the session reached the end of the
	// visible list this turn.
	Completed bool

	// Next is the following prompt; nil when Completed.
	Next *Prompt
}

// NextPrompt computes the question a session should be shown now.
// Pure function of the question pack and the session's answers; no
// side effects. done is true when the session has exhausted the
// visible list.
func NextPrompt(sess *quiz.Session, all []quiz.Question) (Prompt, bool) {
	visible := quiz.VisibleQuestions(all, sess.Answers)
	if sess.CurrentIndex >= len(visible) {
		return Prompt{}, true
	}
	return Prompt{
		Question: visible[sess.CurrentIndex],
		Number:   sess.CurrentIndex + 1,
		Total:    len(visible),
	}, false
}

// SubmitAnswer validates an answer against the session's current
// question and advances the flow.
//
// Preconditions: questionID must be the id of the question at the
// current index - answers to a stale or out-of-order question are
// rejected with UNEXPECTED_QUESTION and the session is untouched.
// Validation is type-specific; rejected answers leave no partial
// mutation.
//
// On acceptance the answer record is written (overwriting any prior
// record for the question), score and engagement are updated, the
// index advances, and the visible list is recomputed - a question
// whose dependency was just satisfied becomes reachable on the very
// next prompt. Session.Version is left alone; the executor owns it.
func SubmitAnswer(sess *quiz.Session, all []quiz.Question, questionID, raw string, now time.Time) (Outcome, error) {
	visible := quiz.VisibleQuestions(all, sess.Answers)
	if len(visible) == 0 {
		return Outcome{}, NewNoVisibleQuestionsError(sess.ID)
	}
	if sess.CurrentIndex >= len(visible) {
		return Outcome{}, NewUnexpectedQuestionError(sess.ID, questionID, "")
	}

	current := visible[sess.CurrentIndex]
	if questionID != current.ID {
		return Outcome{}, NewUnexpectedQuestionError(sess.ID, questionID, current.ID)
	}

	elapsed := now.Sub(sess.LastActivityAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	if quiz.IsSkip(raw) {
		if current.Required {
			return Outcome{}, NewInvalidAnswerError(sess.ID, current.ID, "question is required and cannot be skipped")
		}
		return advance(sess, all, nil, now), nil
	}

	rec, err := gradeAnswer(sess, current, raw, elapsed, now)
	if err != nil {
		return Outcome{}, err
	}

	return advance(sess, all, &rec, now), nil
}

// gradeAnswer validates the raw answer against the question type and
// produces the answer record.
func gradeAnswer(sess *quiz.Session, q quiz.Question, raw string, elapsedMs int64, now time.Time) (quiz.AnswerRecord, error) {
	rec := quiz.AnswerRecord{
		QuestionID:  q.ID,
		RawAnswer:   raw,
		Normalized:  quiz.CanonicalAnswer(q.Type, raw),
		TimeSpentMs: elapsedMs,
		AnsweredAt:  now,
	}

	switch q.Type {
	case quiz.TypeTrueFalse, quiz.TypeYesNo:
		value, ok := quiz.ParseBoolAnswer(q.Type, raw)
		if !ok {
			return quiz.AnswerRecord{}, NewInvalidAnswerError(sess.ID, q.ID, vocabularyHint(q.Type))
		}
		switch {
		case q.CorrectAnswer == nil:
			// Survey-style question: there is no right answer to
			// miss, so the record counts as correct, unscored.
			rec.IsCorrect = true
		case value == *q.CorrectAnswer:
			rec.IsCorrect = true
			rec.PointsAwarded = q.Points
		}

	case quiz.TypePersonal:
		if quiz.NormalizeAnswer(raw) == "" {
			return quiz.AnswerRecord{}, NewInvalidAnswerError(sess.ID, q.ID, "answer must not be empty")
		}
		rec.IsCorrect = true
		rec.PointsAwarded = quiz.PersonalPoints

	case quiz.TypePreference:
		if quiz.NormalizeAnswer(raw) == "" {
			return quiz.AnswerRecord{}, NewInvalidAnswerError(sess.ID, q.ID, "answer must not be empty")
		}
		rec.IsCorrect = true
		rec.PointsAwarded = quiz.PreferencePoints

	default:
		return quiz.AnswerRecord{}, NewInvalidAnswerError(sess.ID, q.ID, fmt.Sprintf("unknown question type %q", q.Type))
	}

	return rec, nil
}

// advance applies an accepted turn: record the answer (if any), move
// the index, refresh engagement, recompute visibility, and complete
// the session when the new index reaches the end of the re-filtered
// list.
func advance(sess *quiz.Session, all []quiz.Question, rec *quiz.AnswerRecord, now time.Time) Outcome {
	if rec != nil {
		if sess.Answers == nil {
			sess.Answers = make(map[string]quiz.AnswerRecord)
		}
		// Overwrite semantics: a retry of the same question replaces
		// the old record, it never appends.
		if prior, exists := sess.Answers[rec.QuestionID]; exists {
			sess.Score -= prior.PointsAwarded
		}
		sess.Answers[rec.QuestionID] = *rec
		sess.Score += rec.PointsAwarded
		refreshEngagement(sess, rec)
	}

	sess.CurrentIndex++
	sess.LastActivityAt = now

	// Recompute after the answer: the dependency it satisfied may
	// have changed the visible list.
	visible := quiz.VisibleQuestions(all, sess.Answers)
	if sess.CurrentIndex >= len(visible) {
		sess.Status = quiz.StatusCompleted
		return Outcome{Record: rec, Skipped: rec == nil, Completed: true}
	}

	next := Prompt{
		Question: visible[sess.CurrentIndex],
		Number:   sess.CurrentIndex + 1,
		Total:    len(visible),
	}
	return Outcome{Record: rec, Skipped: rec == nil, Next: &next}
}

// refreshEngagement folds the new answer into the session's
// engagement metadata. Per-question timing overwrites on re-answer,
// and the total is recomputed from the map so overwrites never
// inflate it.
func refreshEngagement(sess *quiz.Session, rec *quiz.AnswerRecord) {
	if sess.Engagement.PerQuestionMs == nil {
		sess.Engagement.PerQuestionMs = make(map[string]int64)
	}
	sess.Engagement.PerQuestionMs[rec.QuestionID] = rec.TimeSpentMs

	var total int64
	for _, ms := range sess.Engagement.PerQuestionMs {
		total += ms
	}
	sess.Engagement.TotalTimeMs = total
	sess.Engagement.EngagementScore = quiz.EngagementScore(sess.Answers)
}

// vocabularyHint names the accepted tokens for a graded type.
func vocabularyHint(t quiz.QuestionType) string {
	if t == quiz.TypeYesNo {
		return "answer must be one of: oui, non, yes, no"
	}
	return "answer must be one of: vrai, faux, true, false"
}

// FormatPrompt renders a prompt as the participant-facing message.
func FormatPrompt(p Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d/%d : %s", p.Number, p.Total, p.Question.Text)

	switch p.Question.Type {
	case quiz.TypeTrueFalse:
		b.WriteString("\nRépondez par Vrai ou Faux.")
	case quiz.TypeYesNo:
		b.WriteString("\nRépondez par Oui ou Non.")
	case quiz.TypePreference:
		for i, opt := range p.Question.Options {
			fmt.Fprintf(&b, "\n%d. %s", i+1, opt)
		}
	}
	return b.String()
}

// FormatCompletion renders the end-of-quiz message.
func FormatCompletion(sess *quiz.Session) string {
	return fmt.Sprintf("Quiz terminé ! Score final : %d points. Engagement : %d/100.",
		sess.Score, sess.Engagement.EngagementScore)
}
