package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasteur222/quizflow/internal/quiz"
)

func activeSession(at time.Time) quiz.Session {
	return quiz.Session{
		ID:             "s1",
		ParticipantID:  "p1",
		Status:         quiz.StatusActive,
		StartedAt:      at,
		LastActivityAt: at,
		Version:        1,
		Answers:        map[string]quiz.AnswerRecord{},
	}
}

func TestNextPrompt_HidesUnmetConditional(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	p, done := NextPrompt(&sess, pack)
	require.False(t, done)
	assert.Equal(t, "q1", p.Question.ID)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 2, p.Total, "q3 is hidden until q1 is answered vrai")
}

func TestSubmitAnswer_CorrectAnswerScoresAndRevealsDependent(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)
	at := testEpoch.Add(4 * time.Second)

	out, err := SubmitAnswer(&sess, pack, "q1", "Vrai", at)
	require.NoError(t, err)

	require.NotNil(t, out.Record)
	assert.True(t, out.Record.IsCorrect)
	assert.Equal(t, 10, out.Record.PointsAwarded)
	assert.Equal(t, "vrai", out.Record.Normalized)
	assert.Equal(t, int64(4000), out.Record.TimeSpentMs)

	assert.Equal(t, 10, sess.Score)
	assert.Equal(t, 1, sess.CurrentIndex)
	assert.Equal(t, at, sess.LastActivityAt)
	assert.Equal(t, quiz.StatusActive, sess.Status)

	require.NotNil(t, out.Next)
	assert.Equal(t, "q2", out.Next.Question.ID)
	assert.Equal(t, 2, out.Next.Number)
	assert.Equal(t, 3, out.Next.Total, "q3 became visible this turn")
}

func TestSubmitAnswer_WrongAnswerKeepsDependentHidden(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	out, err := SubmitAnswer(&sess, pack, "q1", "Faux", testEpoch.Add(time.Second))
	require.NoError(t, err)

	require.NotNil(t, out.Record)
	assert.False(t, out.Record.IsCorrect)
	assert.Zero(t, out.Record.PointsAwarded)
	assert.Zero(t, sess.Score)

	require.NotNil(t, out.Next)
	assert.Equal(t, "q2", out.Next.Question.ID)
	assert.Equal(t, 2, out.Next.Total)
}

func TestSubmitAnswer_InvalidVocabularyLeavesSessionUntouched(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)
	before := sess

	_, err := SubmitAnswer(&sess, pack, "q1", "peut-être", testEpoch.Add(time.Second))
	require.True(t, IsUserInputError(err))

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, ErrCodeInvalidAnswerFormat, flowErr.Code)

	assert.Equal(t, before.CurrentIndex, sess.CurrentIndex)
	assert.Equal(t, before.Score, sess.Score)
	assert.Equal(t, before.LastActivityAt, sess.LastActivityAt)
	assert.Empty(t, sess.Answers)
}

func TestSubmitAnswer_WrongQuestionIDRejected(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	_, err := SubmitAnswer(&sess, pack, "q2", "bleu", testEpoch.Add(time.Second))
	require.True(t, IsUserInputError(err))

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, ErrCodeUnexpectedQuestion, flowErr.Code)
	assert.Zero(t, sess.CurrentIndex)
}

func TestSubmitAnswer_SkipRequiredRejected(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	_, err := SubmitAnswer(&sess, pack, "q1", "passer", testEpoch.Add(time.Second))
	require.True(t, IsUserInputError(err))

	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, ErrCodeInvalidAnswerFormat, flowErr.Code)
	assert.Zero(t, sess.CurrentIndex)
}

func TestSubmitAnswer_SkipOptionalAdvancesWithoutRecord(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	_, err := SubmitAnswer(&sess, pack, "q1", "Vrai", testEpoch.Add(time.Second))
	require.NoError(t, err)

	out, err := SubmitAnswer(&sess, pack, "q2", "skip", testEpoch.Add(2*time.Second))
	require.NoError(t, err)

	assert.True(t, out.Skipped)
	assert.Nil(t, out.Record)
	assert.Equal(t, 2, sess.CurrentIndex)
	assert.NotContains(t, sess.Answers, "q2")
	assert.Equal(t, 10, sess.Score, "skip awards nothing")

	require.NotNil(t, out.Next)
	assert.Equal(t, "q3", out.Next.Question.ID)
}

func TestSubmitAnswer_PersonalAwardsFixedPoints(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	_, err := SubmitAnswer(&sess, pack, "q1", "Vrai", testEpoch.Add(time.Second))
	require.NoError(t, err)

	out, err := SubmitAnswer(&sess, pack, "q2", "Bleu", testEpoch.Add(2*time.Second))
	require.NoError(t, err)

	require.NotNil(t, out.Record)
	assert.True(t, out.Record.IsCorrect)
	assert.Equal(t, quiz.PersonalPoints, out.Record.PointsAwarded)
	assert.Equal(t, 15, sess.Score)
}

func TestSubmitAnswer_SurveyQuestionCountsCorrectUnscored(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	_, err := SubmitAnswer(&sess, pack, "q1", "Vrai", testEpoch.Add(time.Second))
	require.NoError(t, err)
	_, err = SubmitAnswer(&sess, pack, "q2", "Bleu", testEpoch.Add(2*time.Second))
	require.NoError(t, err)

	// q3 declares no correctAnswer: the record counts as correct (there
	// is nothing to miss) but awards no points.
	out, err := SubmitAnswer(&sess, pack, "q3", "Non", testEpoch.Add(3*time.Second))
	require.NoError(t, err)

	require.NotNil(t, out.Record)
	assert.True(t, out.Record.IsCorrect)
	assert.Zero(t, out.Record.PointsAwarded)
	assert.Equal(t, 15, sess.Score)
}

func TestSubmitAnswer_CompletesAtEndOfVisibleList(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)
	at := testEpoch

	for _, step := range []struct{ id, answer string }{
		{"q1", "Vrai"},
		{"q2", "Bleu"},
		{"q3", "Oui"},
	} {
		at = at.Add(5 * time.Second)
		out, err := SubmitAnswer(&sess, pack, step.id, step.answer, at)
		require.NoError(t, err)
		if step.id == "q3" {
			assert.True(t, out.Completed)
			assert.Nil(t, out.Next)
		} else {
			assert.False(t, out.Completed)
		}
	}

	assert.Equal(t, quiz.StatusCompleted, sess.Status)
	assert.Equal(t, 15, sess.Score)
	assert.Len(t, sess.Answers, 3)

	_, done := NextPrompt(&sess, pack)
	assert.True(t, done)
}

func TestSubmitAnswer_EngagementTracksTimeAndScore(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	_, err := SubmitAnswer(&sess, pack, "q1", "Vrai", testEpoch.Add(4*time.Second))
	require.NoError(t, err)
	_, err = SubmitAnswer(&sess, pack, "q2", "Bleu", testEpoch.Add(10*time.Second))
	require.NoError(t, err)

	assert.Equal(t, int64(4000), sess.Engagement.PerQuestionMs["q1"])
	assert.Equal(t, int64(6000), sess.Engagement.PerQuestionMs["q2"])
	assert.Equal(t, int64(10000), sess.Engagement.TotalTimeMs)
	assert.Equal(t, quiz.EngagementScore(sess.Answers), sess.Engagement.EngagementScore)
	assert.Positive(t, sess.Engagement.EngagementScore)
}

func TestSubmitAnswer_ClockRewindClampsElapsed(t *testing.T) {
	pack := branchingPack()
	sess := activeSession(testEpoch)

	out, err := SubmitAnswer(&sess, pack, "q1", "Vrai", testEpoch.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, out.Record.TimeSpentMs)
}

func TestSubmitAnswer_NoVisibleQuestions(t *testing.T) {
	sess := activeSession(testEpoch)

	_, err := SubmitAnswer(&sess, nil, "q1", "Vrai", testEpoch)
	require.True(t, IsNoVisibleQuestions(err))
}

func TestFormatPrompt(t *testing.T) {
	pack := branchingPack()

	assert.Equal(t,
		"Question 1/2 : La Terre est ronde.\nRépondez par Vrai ou Faux.",
		FormatPrompt(Prompt{Question: pack[0], Number: 1, Total: 2}))

	assert.Equal(t,
		"Question 3/3 : Vous aimez la géographie ?\nRépondez par Oui ou Non.",
		FormatPrompt(Prompt{Question: pack[2], Number: 3, Total: 3}))

	pref := quiz.Question{
		ID:   "q9",
		Text: "Quel format préférez-vous ?",
		Type: quiz.TypePreference,
		Options: []string{
			"Texte",
			"Vidéo",
		},
	}
	assert.Equal(t,
		"Question 2/2 : Quel format préférez-vous ?\n1. Texte\n2. Vidéo",
		FormatPrompt(Prompt{Question: pref, Number: 2, Total: 2}))
}

func TestFormatCompletion(t *testing.T) {
	sess := activeSession(testEpoch)
	sess.Score = 15
	sess.Engagement.EngagementScore = 72

	assert.Equal(t,
		"Quiz terminé ! Score final : 15 points. Engagement : 72/100.",
		FormatCompletion(&sess))
}
