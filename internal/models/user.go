package models

import (
	"fmt"
	"time"
)

// User is a registered account. PasswordHash never leaves the database layer
// in API responses.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	Preferences  Preferences `json:"accessibility_preferences"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Role controls access to the admin surface.
type Role string

const (
	RoleStudent   Role = "student"
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
)

// ParseRole validates a raw role string from the API boundary.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleAdmin, RoleVolunteer:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("invalid role: %q", raw)
	}
}

// Preferences holds a user's accessibility settings.
type Preferences struct {
	HighContrast  bool   `json:"high_contrast"`
	FontSize      string `json:"font_size"` // small|medium|large|xl
	DyslexiaFont  bool   `json:"dyslexia_font"`
	FocusMode     bool   `json:"focus_mode"`
	SpeechEnabled bool   `json:"speech_enabled"`
	Language      string `json:"language"` // en|ta|hi
}

// DefaultPreferences returns the settings applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		FontSize: "medium",
		Language: "en",
	}
}

// Profile is the display-only subset of a user used for record enrichment.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Fallback profile values substituted when a reporter's account is missing.
const (
	UnknownUserName  = "Unknown User"
	UnknownUserEmail = "No email"
)
