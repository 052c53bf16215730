package api

import (
	"context"
	"net/http"
	"time"

	"github.com/campuspulse/campuspulse/internal/analytics"
	"github.com/campuspulse/campuspulse/internal/assistant"
	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/models"
	"log/slog"
)

const (
	moodTrendDays       = 7
	activityWindowHours = 24
	recentListLimit     = 5
)

// AdminHandler serves the analytics dashboard and the AI monitoring
// endpoints.
type AdminHandler struct {
	alerts    AlertStore
	incidents IncidentStore
	users     UserStore
	moods     MoodStore
	assistant *assistant.Assistant
	clock     clock.Clock
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(alerts AlertStore, incidents IncidentStore, users UserStore, moods MoodStore, ai *assistant.Assistant, clk clock.Clock, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		alerts:    alerts,
		incidents: incidents,
		users:     users,
		moods:     moods,
		assistant: ai,
		clock:     clk,
		logger:    logger,
	}
}

// Analytics handles GET /api/admin/analytics. Individual aggregate failures
// degrade to zero values so one broken query does not blank the whole
// dashboard.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx := r.Context()
	now := h.clock.Now()
	stats := analytics.DashboardStats{
		SeverityFrequency:  analytics.SeverityFrequency(nil),
		IncidentsByType:    map[string]int{},
		AccessibilityUsage: analytics.AccessibilityUsage(nil),
		RecentUsers:        []models.Profile{},
		RecentIncidents:    []models.Incident{},
	}

	if count, err := h.users.Count(ctx); err == nil {
		stats.TotalUsers = count
	} else {
		h.logger.Warn("user count unavailable", "error", err)
	}

	if count, err := h.incidents.Count(ctx); err == nil {
		stats.TotalIncidents = count
	} else {
		h.logger.Warn("incident count unavailable", "error", err)
	}

	if count, err := h.alerts.CountActive(ctx); err == nil {
		stats.ActiveSOSAlerts = count
	} else {
		h.logger.Warn("active alert count unavailable", "error", err)
	}

	stats.MoodTrend = h.moodTrend(ctx, now)

	if counts, err := h.incidents.CountBySeverity(ctx); err == nil {
		stats.SeverityFrequency = analytics.SeverityFrequency(counts)
	} else {
		h.logger.Warn("severity frequency unavailable", "error", err)
	}

	weekAgo := now.AddDate(0, 0, -moodTrendDays).UnixMilli()
	if counts, err := h.incidents.CountByType(ctx, weekAgo); err == nil {
		stats.IncidentsByType = counts
	} else {
		h.logger.Warn("incident type counts unavailable", "error", err)
	}

	if users, err := h.users.ListAll(ctx, 0); err == nil {
		stats.AccessibilityUsage = analytics.AccessibilityUsage(users)
		for i, user := range users {
			if i >= recentListLimit {
				break
			}
			stats.RecentUsers = append(stats.RecentUsers, models.Profile{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
			})
		}
	} else {
		h.logger.Warn("user list unavailable", "error", err)
	}

	if incidents, err := h.incidents.ListAll(ctx, recentListLimit); err == nil {
		stats.RecentIncidents = incidents
	} else {
		h.logger.Warn("recent incidents unavailable", "error", err)
	}

	writeJSON(w, http.StatusOK, stats)
}

// ActivityMonitor handles GET /api/admin/activity-monitor. It feeds the
// last day's activity counts to the model for a status judgment.
func (h *AdminHandler) ActivityMonitor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx := r.Context()
	since := h.clock.Now().Add(-activityWindowHours * time.Hour).UnixMilli()
	snapshot := analytics.ActivitySnapshot{WindowHours: activityWindowHours}

	if count, err := h.alerts.CountSince(ctx, since); err == nil {
		snapshot.SOSAlerts = count
	} else {
		h.logger.Warn("alert activity count unavailable", "error", err)
	}
	if count, err := h.incidents.CountSince(ctx, since); err == nil {
		snapshot.Incidents = count
	} else {
		h.logger.Warn("incident activity count unavailable", "error", err)
	}
	if entries, err := h.moods.ListSince(ctx, since); err == nil {
		snapshot.MoodEntries = len(entries)
	} else {
		h.logger.Warn("mood activity count unavailable", "error", err)
	}

	report, err := h.assistant.MonitorActivity(ctx, snapshot)
	if err != nil {
		h.logger.Error("activity monitor failed", "error", err)
		writeError(w, http.StatusBadGateway, "Activity monitor is unavailable right now")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": snapshot,
		"report":   report,
	})
}

// MoodAnalysis handles GET /api/admin/mood-analysis: the weekly mood trend
// plus the model's anomaly judgment over it.
func (h *AdminHandler) MoodAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx := r.Context()
	trend := h.moodTrend(ctx, h.clock.Now())

	analysis, err := h.assistant.AnalyzeMoodTrend(ctx, trend)
	if err != nil {
		h.logger.Error("mood analysis failed", "error", err)
		writeError(w, http.StatusBadGateway, "Mood analysis is unavailable right now")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trend":    trend,
		"analysis": analysis,
	})
}

func (h *AdminHandler) moodTrend(ctx context.Context, now time.Time) []analytics.TrendPoint {
	since := now.AddDate(0, 0, -moodTrendDays).UnixMilli()
	entries, err := h.moods.ListSince(ctx, since)
	if err != nil {
		h.logger.Warn("mood entries unavailable", "error", err)
		entries = nil
	}
	return analytics.MoodTrend(entries, moodTrendDays, now)
}
