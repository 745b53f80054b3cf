// Package scoring holds the pure scoring rules of a quiz session.
package scoring

import (
	"math"
	"strings"
)

// SecondsPerQuestion is the pace below which a time bonus is earned.
const SecondsPerQuestion = 60

// PointsPerCorrect is awarded for every correct answer.
const PointsPerCorrect = 10

// IsCorrect compares answer letters case-insensitively.
func IsCorrect(submitted, correct string) bool {
	s := strings.TrimSpace(submitted)
	if s == "" {
		return false
	}
	return strings.EqualFold(s, strings.TrimSpace(correct))
}

// Percentage returns 100*score/total rounded to two decimals, or 0 for an empty quiz.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(100*float64(score)/float64(total)*100) / 100
}

// TimeBonus is one point per full minute saved against the per-question baseline.
func TimeBonus(elapsedSeconds float64, total int) int {
	baseline := float64(total * SecondsPerQuestion)
	if elapsedSeconds >= baseline {
		return 0
	}
	bonus := int(math.Floor((baseline - elapsedSeconds) / 60))
	if bonus < 0 {
		return 0
	}
	return bonus
}

// Points combines correctness and the time bonus.
func Points(elapsedSeconds float64, score, total int) int {
	return score*PointsPerCorrect + TimeBonus(elapsedSeconds, total)
}
