package api

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/campuspulse/campuspulse/internal/database"
	"github.com/campuspulse/campuspulse/internal/models"
	"log/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func clockAtHour(hour int) fixedClock {
	return fixedClock{t: time.Date(2025, 3, 10, hour, 30, 0, 0, time.UTC)}
}

// fakeAlertStore is an in-memory AlertStore that records the order of its
// mutating calls, so the two-phase write can be asserted.
type fakeAlertStore struct {
	alerts    []models.Alert
	ops       []string
	createErr error
	listErr   error
	setErr    error
}

func (s *fakeAlertStore) Create(_ context.Context, alert models.Alert) (models.Alert, error) {
	if s.createErr != nil {
		return models.Alert{}, s.createErr
	}
	if alert.ID == "" {
		alert.ID = fmt.Sprintf("alert-%d", len(s.alerts)+1)
	}
	s.alerts = append(s.alerts, alert)
	s.ops = append(s.ops, "create")
	return alert, nil
}

func (s *fakeAlertStore) SetUrgency(_ context.Context, id string, score int) error {
	if s.setErr != nil {
		return s.setErr
	}
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].UrgencyScore = score
			s.ops = append(s.ops, "set_urgency:"+strconv.Itoa(score))
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeAlertStore) UpdateStatus(_ context.Context, id string, status models.AlertStatus) error {
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Status = status
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeAlertStore) Delete(_ context.Context, id string) error {
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeAlertStore) ListAll(_ context.Context, _ int) ([]models.Alert, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Alert{}, s.alerts...), nil
}

func (s *fakeAlertStore) ListByStatus(_ context.Context, status models.AlertStatus) ([]models.Alert, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Alert
	for _, a := range s.alerts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) CountActiveByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, a := range s.alerts {
		if a.UserID == userID && a.Status == models.AlertStatusActive {
			count++
		}
	}
	s.ops = append(s.ops, "count_active")
	return count, nil
}

func (s *fakeAlertStore) CountActive(_ context.Context) (int, error) {
	count := 0
	for _, a := range s.alerts {
		if a.Status == models.AlertStatusActive {
			count++
		}
	}
	return count, nil
}

func (s *fakeAlertStore) CountSince(_ context.Context, sinceMs int64) (int, error) {
	count := 0
	for _, a := range s.alerts {
		if a.Timestamp > sinceMs {
			count++
		}
	}
	return count, nil
}

type fakeIncidentStore struct {
	incidents []models.Incident
	createErr error
}

func (s *fakeIncidentStore) Create(_ context.Context, incident models.Incident) (models.Incident, error) {
	if s.createErr != nil {
		return models.Incident{}, s.createErr
	}
	if incident.ID == "" {
		incident.ID = fmt.Sprintf("incident-%d", len(s.incidents)+1)
	}
	s.incidents = append(s.incidents, incident)
	return incident, nil
}

func (s *fakeIncidentStore) UpdateStatus(_ context.Context, id string, status models.IncidentStatus) error {
	for i := range s.incidents {
		if s.incidents[i].ID == id {
			s.incidents[i].Status = status
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeIncidentStore) Delete(_ context.Context, id string) error {
	for i := range s.incidents {
		if s.incidents[i].ID == id {
			s.incidents = append(s.incidents[:i], s.incidents[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeIncidentStore) ListAll(_ context.Context, _ int) ([]models.Incident, error) {
	return append([]models.Incident{}, s.incidents...), nil
}

func (s *fakeIncidentStore) CountBySeverity(_ context.Context) (map[models.Severity]int, error) {
	counts := map[models.Severity]int{}
	for _, incident := range s.incidents {
		counts[incident.Severity]++
	}
	return counts, nil
}

func (s *fakeIncidentStore) CountByType(_ context.Context, sinceMs int64) (map[string]int, error) {
	counts := map[string]int{}
	for _, incident := range s.incidents {
		if incident.Timestamp > sinceMs {
			counts[incident.Type]++
		}
	}
	return counts, nil
}

func (s *fakeIncidentStore) CountSince(_ context.Context, sinceMs int64) (int, error) {
	count := 0
	for _, incident := range s.incidents {
		if incident.Timestamp > sinceMs {
			count++
		}
	}
	return count, nil
}

func (s *fakeIncidentStore) Count(_ context.Context) (int, error) {
	return len(s.incidents), nil
}

type fakeUserStore struct {
	users       []models.User
	profilesErr error
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(s.users)+1)
	}
	s.users = append(s.users, user)
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) ListAll(_ context.Context, _ int) ([]models.User, error) {
	return append([]models.User{}, s.users...), nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, id string, role models.Role) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Role = role
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeUserStore) UpdateRoleByEmail(_ context.Context, email string, role models.Role) error {
	for i := range s.users {
		if s.users[i].Email == email {
			s.users[i].Role = role
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeUserStore) UpdatePreferences(_ context.Context, id string, prefs models.Preferences) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Preferences = prefs
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeUserStore) ProfilesByID(_ context.Context) (map[string]models.Profile, error) {
	if s.profilesErr != nil {
		return nil, s.profilesErr
	}
	profiles := map[string]models.Profile{}
	for _, u := range s.users {
		profiles[u.ID] = models.Profile{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return profiles, nil
}

func (s *fakeUserStore) Count(_ context.Context) (int, error) {
	return len(s.users), nil
}

type fakeMoodStore struct {
	entries []models.MoodEntry
}

func (s *fakeMoodStore) Create(_ context.Context, entry models.MoodEntry) (models.MoodEntry, error) {
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("mood-%d", len(s.entries)+1)
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *fakeMoodStore) ListByUser(_ context.Context, userID string, _ int) ([]models.MoodEntry, error) {
	var out []models.MoodEntry
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeMoodStore) ListSince(_ context.Context, sinceMs int64) ([]models.MoodEntry, error) {
	var out []models.MoodEntry
	for _, e := range s.entries {
		if e.Timestamp > sinceMs {
			out = append(out, e)
		}
	}
	return out, nil
}
