package models

import (
	"fmt"
	"strings"
	"time"
)

// Incident represents a reported campus incident. Severity is assigned once
// at creation (classifier value if valid, otherwise the reporter's own
// estimate) and is immutable afterwards.
type Incident struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Type        string         `json:"type"` // free-form category, e.g. "Fire", "Safety"
	Description string         `json:"description"`
	Location    *Location      `json:"location,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Severity    Severity       `json:"severity"`
	Status      IncidentStatus `json:"status"`
	Timestamp   int64          `json:"timestamp"` // epoch milliseconds
	CreatedAt   time.Time      `json:"created_at"`
}

// Severity classifies incident seriousness.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity normalizes (lowercase, trim) and validates a severity value.
func ParseSeverity(raw string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityLow:
		return SeverityLow, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityCritical:
		return SeverityCritical, nil
	default:
		return "", fmt.Errorf("invalid severity: %q", raw)
	}
}

// IncidentStatus represents the admin-driven workflow state of an incident.
// No transition guard is enforced: pending -> resolved directly is allowed.
type IncidentStatus string

const (
	IncidentStatusPending  IncidentStatus = "pending"
	IncidentStatusApproved IncidentStatus = "approved"
	IncidentStatusResolved IncidentStatus = "resolved"
)

// ParseIncidentStatus validates a raw status string from the API boundary.
func ParseIncidentStatus(raw string) (IncidentStatus, error) {
	switch IncidentStatus(raw) {
	case IncidentStatusPending, IncidentStatusApproved, IncidentStatusResolved:
		return IncidentStatus(raw), nil
	default:
		return "", fmt.Errorf("invalid incident status: %q", raw)
	}
}

// EnrichedIncident is an Incident joined with display-only reporter profile data.
type EnrichedIncident struct {
	Incident
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
