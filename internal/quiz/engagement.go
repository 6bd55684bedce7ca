package quiz

import "math"

// Engagement scoring bands over the average response time. Answers in
// the comfortable band score highest; rushed answers suggest guessing
// and slow answers suggest distraction.
const (
	comfortBandFloorMs = 10_000
	comfortBandCeilMs  = 60_000

	comfortBandScore = 40
	rushedBandScore  = 20
	slowBandScore    = 30

	accuracyWeight   = 40
	volumePerAnswer  = 2
	volumeScoreLimit = 20
)

// EngagementScore derives a 0-100 engagement figure from the answers
// recorded so far. The score is a pure function of the answer set:
// a response-time band, an accuracy share, and an answer-volume bonus,
// rounded to the nearest integer and clamped to [0, 100].
//
// A session with no answers scores zero.
func EngagementScore(answers map[string]AnswerRecord) int {
	if len(answers) == 0 {
		return 0
	}

	var totalMs int64
	var correct int
	for _, rec := range answers {
		totalMs += rec.TimeSpentMs
		if rec.IsCorrect {
			correct++
		}
	}
	count := len(answers)

	avgMs := totalMs / int64(count)
	band := slowBandScore
	switch {
	case avgMs < comfortBandFloorMs:
		band = rushedBandScore
	case avgMs <= comfortBandCeilMs:
		band = comfortBandScore
	}

	accuracy := float64(correct) / float64(count)
	volume := count * volumePerAnswer
	if volume > volumeScoreLimit {
		volume = volumeScoreLimit
	}

	score := int(math.Round(float64(band) + accuracy*accuracyWeight + float64(volume)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
