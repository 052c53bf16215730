package api

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRegistration validates a registration request.
func ValidateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "Name is required"}
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if len(password) < 6 {
		return ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	return nil
}

// ValidateEmail does a cheap structural check, not full RFC parsing.
func ValidateEmail(email string) error {
	if email == "" {
		return ValidationError{Field: "email", Message: "Email is required"}
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ValidationError{Field: "email", Message: "Invalid email format"}
	}
	return nil
}

// ValidateAnnouncement validates an announcement create request.
func ValidateAnnouncement(title, message, priority string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError{Field: "title", Message: "Title is required"}
	}
	if strings.TrimSpace(message) == "" {
		return ValidationError{Field: "message", Message: "Message is required"}
	}
	switch priority {
	case "normal", "important", "urgent":
		return nil
	default:
		return ValidationError{Field: "priority", Message: "Priority must be normal, important, or urgent"}
	}
}

// ValidateChatMessage bounds a chat or summarize payload.
func ValidateChatMessage(message string, maxLen int) error {
	if strings.TrimSpace(message) == "" {
		return ValidationError{Field: "message", Message: "Message is required"}
	}
	if len(message) > maxLen {
		return ValidationError{Field: "message", Message: fmt.Sprintf("Message must be at most %d characters", maxLen)}
	}
	return nil
}
