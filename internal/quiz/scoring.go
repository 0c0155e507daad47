package quiz

import (
	"math"
	"time"
)

const (
	// pointsPerCorrect is the base reward for each correct answer.
	pointsPerCorrect = 10
	// maxSpeedBonus is the most extra points a correct answer can earn by
	// finishing early.
	maxSpeedBonus = 5
)

// Percentage returns score out of total as a percentage, 0 when total is 0.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// Points rewards correct answers plus a speed bonus for the unused share of
// the time allowance (PerQuestion per question). More correct answers in
// less time never earn fewer points.
func Points(elapsed time.Duration, score, total int) int {
	if total <= 0 || score <= 0 {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	allowance := float64(time.Duration(total) * PerQuestion)
	spare := math.Max(0, allowance-float64(elapsed))
	bonus := math.Floor(float64(score*maxSpeedBonus) * spare / allowance)
	return score*pointsPerCorrect + int(bonus)
}
