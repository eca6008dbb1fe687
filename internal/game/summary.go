package game

import "math"

// PassAccuracy is the minimum rounded accuracy that passes a level.
const PassAccuracy = 80

// Summary is the outcome of a completed level.
type Summary struct {
	Level          int
	Score          int
	Total          int
	Accuracy       int
	Passed         bool
	Perfect        bool
	LivesRemaining int
	EndedByLives   bool
}

// Summarize applies the finalization rule. Accuracy is measured against
// the level's fixed question count, so questions never reached count as
// wrong.
func Summarize(level, score, total, lives int, endedByLives bool) Summary {
	s := Summary{
		Level:          level,
		Score:          score,
		Total:          total,
		LivesRemaining: lives,
		EndedByLives:   endedByLives,
	}
	if total > 0 {
		s.Accuracy = int(math.Round(float64(score) / float64(total) * 100))
	}
	s.Passed = s.Accuracy >= PassAccuracy
	s.Perfect = s.Accuracy == 100
	return s
}

// Outcome is a short label for the summary: perfect, passed or failed.
func (s Summary) Outcome() string {
	switch {
	case s.Perfect:
		return "perfect"
	case s.Passed:
		return "passed"
	default:
		return "failed"
	}
}
