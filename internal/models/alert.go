package models

import (
	"fmt"
	"time"
)

// Alert represents a single SOS trigger from a student. The urgency score is
// assigned once at creation by the triage resolver and is never re-derived.
type Alert struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Location     *Location   `json:"location,omitempty"`
	Timestamp    int64       `json:"timestamp"` // epoch milliseconds
	Status       AlertStatus `json:"status"`
	UrgencyScore int         `json:"urgency_score"` // 1-10, higher = more urgent
	CreatedAt    time.Time   `json:"created_at"`
}

// AlertStatus represents the lifecycle state of an SOS alert.
type AlertStatus string

const (
	AlertStatusActive  AlertStatus = "active"
	AlertStatusHandled AlertStatus = "handled"
)

// ParseAlertStatus validates a raw status string from the API boundary.
func ParseAlertStatus(raw string) (AlertStatus, error) {
	switch AlertStatus(raw) {
	case AlertStatusActive, AlertStatusHandled:
		return AlertStatus(raw), nil
	default:
		return "", fmt.Errorf("invalid alert status: %q", raw)
	}
}

// Location represents a GPS coordinate pair attached to an alert or incident.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// EnrichedAlert is an Alert joined with display-only reporter profile data.
// Profile fields never affect ordering or scoring.
type EnrichedAlert struct {
	Alert
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
