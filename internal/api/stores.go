package api

import (
	"context"

	"github.com/campuspulse/campuspulse/internal/models"
)

// Store interfaces consumed by the handlers. The database package provides
// the Postgres implementations; tests substitute in-memory fakes.

// AlertStore persists SOS alerts.
type AlertStore interface {
	Create(ctx context.Context, alert models.Alert) (models.Alert, error)
	SetUrgency(ctx context.Context, id string, score int) error
	UpdateStatus(ctx context.Context, id string, status models.AlertStatus) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, limit int) ([]models.Alert, error)
	ListByStatus(ctx context.Context, status models.AlertStatus) ([]models.Alert, error)
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	CountActive(ctx context.Context) (int, error)
	CountSince(ctx context.Context, sinceMs int64) (int, error)
}

// IncidentStore persists incident reports.
type IncidentStore interface {
	Create(ctx context.Context, incident models.Incident) (models.Incident, error)
	UpdateStatus(ctx context.Context, id string, status models.IncidentStatus) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, limit int) ([]models.Incident, error)
	CountBySeverity(ctx context.Context) (map[models.Severity]int, error)
	CountByType(ctx context.Context, sinceMs int64) (map[string]int, error)
	CountSince(ctx context.Context, sinceMs int64) (int, error)
	Count(ctx context.Context) (int, error)
}

// UserStore persists accounts and serves profile lookups.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListAll(ctx context.Context, limit int) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdateRoleByEmail(ctx context.Context, email string, role models.Role) error
	UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) error
	ProfilesByID(ctx context.Context) (map[string]models.Profile, error)
	Count(ctx context.Context) (int, error)
}

// MoodStore persists wellbeing check-ins.
type MoodStore interface {
	Create(ctx context.Context, entry models.MoodEntry) (models.MoodEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error)
	ListSince(ctx context.Context, sinceMs int64) ([]models.MoodEntry, error)
}

// AnnouncementStore persists campus notices.
type AnnouncementStore interface {
	Create(ctx context.Context, ann models.Announcement) (models.Announcement, error)
	ListRecent(ctx context.Context, limit int) ([]models.Announcement, error)
	Delete(ctx context.Context, id string) error
}
