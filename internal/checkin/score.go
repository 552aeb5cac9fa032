// Package checkin holds the pure calculation pieces of the submission
// engine: weighted scoring and check-in window classification. Nothing in
// this package touches persistence or the clock.
package checkin

import (
	"math"

	"coachsync/wellness-app/internal/domain"
)

// Score aggregates a set of question responses into a 0-100 score and counts
// how many questions were answered.
//
// Only scoreable question types with a positive weight contribute:
//
//	score = round( Σ(raw_i * w_i) / (Σw_i * 10) * 100 )
//
// Raw scores are on a 0-10 scale. A zero weight sum yields 0.
func Score(responses []domain.QuestionResponse) (finalScore int, answeredCount int) {
	var weightedSum, weightSum float64

	for _, r := range responses {
		if r.Answered() {
			answeredCount++
		}
		if !r.Type.Scoreable() || r.Weight <= 0 {
			continue
		}
		weightedSum += r.RawScore * r.Weight
		weightSum += r.Weight
	}

	if weightSum == 0 {
		return 0, answeredCount
	}

	finalScore = int(math.Round(weightedSum / (weightSum * 10) * 100))
	if finalScore < 0 {
		finalScore = 0
	} else if finalScore > 100 {
		finalScore = 100
	}
	return finalScore, answeredCount
}
