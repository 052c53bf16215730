package triage

import "github.com/campuspulse/campuspulse/internal/models"

// Urgency score bounds for SOS alerts.
const (
	MinUrgency = 1
	MaxUrgency = 10
)

// IsNighttime reports whether a local hour falls in the elevated-risk window
// [22,24) or [0,6].
func IsNighttime(hour int) bool {
	return hour >= 22 || hour <= 6
}

// ClampScore restricts a raw score to the valid urgency range.
func ClampScore(score int) int {
	if score < MinUrgency {
		return MinUrgency
	}
	if score > MaxUrgency {
		return MaxUrgency
	}
	return score
}

// EstimateUrgency computes a deterministic urgency score from structured
// signals, with no I/O. It is the fallback when the classifier is unreachable
// and must stay pure so it is independently testable.
//
//	base 5, +3 nighttime, +1 when the user already has >1 active alert,
//	-1 when no location was supplied, clamped to [1,10].
func EstimateUrgency(hour int, repeatCount int, hasLocation bool) int {
	score := 5
	if IsNighttime(hour) {
		score += 3
	}
	if repeatCount > 1 {
		score++
	}
	if !hasLocation {
		score--
	}
	return ClampScore(score)
}

// CoarseUrgency is the blunt fallback applied when the classifier answered
// but its output could not be parsed as a score: 8 at night, 6 otherwise.
// Kept separate from EstimateUrgency because callers observably depend on
// these exact values for the parse-failure path.
func CoarseUrgency(nighttime bool) int {
	if nighttime {
		return 8
	}
	return 6
}

// SeverityRank maps an incident severity to a sortable rank. Unknown values
// rank below low so malformed records sink to the bottom of priority views.
func SeverityRank(s models.Severity) int {
	switch s {
	case models.SeverityCritical:
		return 4
	case models.SeverityHigh:
		return 3
	case models.SeverityMedium:
		return 2
	case models.SeverityLow:
		return 1
	default:
		return 0
	}
}
