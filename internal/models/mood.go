package models

import (
	"fmt"
	"time"
)

// MoodEntry is a single wellbeing check-in.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      Mood      `json:"mood"`
	Note      string    `json:"note,omitempty"`
	Timestamp int64     `json:"timestamp"` // epoch milliseconds
	CreatedAt time.Time `json:"created_at"`
}

// Mood is a coarse self-reported wellbeing category.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodNeutral  Mood = "neutral"
	MoodStressed Mood = "stressed"
	MoodSad      Mood = "sad"
)

// ParseMood validates a raw mood string from the API boundary.
func ParseMood(raw string) (Mood, error) {
	switch Mood(raw) {
	case MoodHappy, MoodNeutral, MoodStressed, MoodSad:
		return Mood(raw), nil
	default:
		return "", fmt.Errorf("invalid mood: %q", raw)
	}
}

// Value maps a mood to its numeric weight for trend averaging.
func (m Mood) Value() int {
	switch m {
	case MoodHappy:
		return 5
	case MoodNeutral:
		return 3
	case MoodStressed:
		return 2
	default:
		return 1
	}
}
