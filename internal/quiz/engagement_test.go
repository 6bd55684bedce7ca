package quiz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test helper to build an answer set with uniform timing and a given
// number of correct answers.
func makeAnswers(count, correct int, perAnswerMs int64) map[string]AnswerRecord {
	answers := make(map[string]AnswerRecord, count)
	for i := 0; i < count; i++ {
		answers[fmt.Sprintf("q%d", i)] = AnswerRecord{
			QuestionID:  fmt.Sprintf("q%d", i),
			TimeSpentMs: perAnswerMs,
			IsCorrect:   i < correct,
		}
	}
	return answers
}

func TestEngagementScore_ZeroAnswers(t *testing.T) {
	assert.Equal(t, 0, EngagementScore(nil))
	assert.Equal(t, 0, EngagementScore(map[string]AnswerRecord{}))
}

func TestEngagementScore_TimeBands(t *testing.T) {
	testCases := []struct {
		name  string
		avgMs int64
		want  int // band + full accuracy (40) + volume for 2 answers (4)
	}{
		{"rushed below band", 9_999, 20 + 40 + 4},
		{"comfortable lower edge", 10_000, 40 + 40 + 4},
		{"comfortable middle", 30_000, 40 + 40 + 4},
		{"comfortable upper edge", 60_000, 40 + 40 + 4},
		{"slow above band", 60_001, 30 + 40 + 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			answers := makeAnswers(2, 2, tc.avgMs)
			assert.Equal(t, tc.want, EngagementScore(answers))
		})
	}
}

func TestEngagementScore_AccuracyShare(t *testing.T) {
	// 4 answers at 30s: band 40, volume 8. Accuracy varies.
	testCases := []struct {
		correct int
		want    int
	}{
		{0, 40 + 0 + 8},
		{1, 40 + 10 + 8},
		{2, 40 + 20 + 8},
		{3, 40 + 30 + 8},
		{4, 40 + 40 + 8},
	}

	for _, tc := range testCases {
		answers := makeAnswers(4, tc.correct, 30_000)
		assert.Equal(t, tc.want, EngagementScore(answers), "correct=%d", tc.correct)
	}
}

func TestEngagementScore_VolumeBonusCapped(t *testing.T) {
	// 15 answers would earn 30 volume points uncapped; the cap holds it at 20.
	answers := makeAnswers(15, 15, 30_000)
	assert.Equal(t, 40+40+20, EngagementScore(answers))
}

func TestEngagementScore_AccuracyRounded(t *testing.T) {
	// 1 of 3 correct at 30s: 40 + 13.33 + 6 rounds to 59.
	answers := makeAnswers(3, 1, 30_000)
	assert.Equal(t, 59, EngagementScore(answers))
}

func TestEngagementScore_NeverExceedsHundred(t *testing.T) {
	answers := makeAnswers(20, 20, 30_000)
	score := EngagementScore(answers)
	assert.LessOrEqual(t, score, 100)
	assert.Equal(t, 100, score)
}
