package api

import (
	"net/http"

	"github.com/campuspulse/campuspulse/internal/assistant"
	"github.com/campuspulse/campuspulse/internal/auth"
	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/triage"
	"log/slog"
)

// Dependencies carries everything the route handlers need.
type Dependencies struct {
	Alerts           AlertStore
	Incidents        IncidentStore
	Users            UserStore
	Moods            MoodStore
	Announcements    AnnouncementStore
	UrgencyResolver  *triage.UrgencyResolver
	SeverityResolver *triage.SeverityResolver
	Assistant        *assistant.Assistant
	AuthConfig       auth.Config
	Clock            clock.Clock
	SOSCounter       SOSCounter
	Logger           *slog.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Users, deps.AuthConfig, deps.Clock, deps.Logger)
	sosHandler := NewSOSHandler(deps.Alerts, deps.Users, deps.UrgencyResolver, deps.Clock, deps.SOSCounter, deps.Logger)
	incidentHandler := NewIncidentHandler(deps.Incidents, deps.Users, deps.SeverityResolver, deps.Clock, deps.Logger)
	wellbeingHandler := NewWellbeingHandler(deps.Moods, deps.Assistant, deps.Clock, deps.Logger)
	announcementHandler := NewAnnouncementHandler(deps.Announcements, deps.Clock, deps.Logger)
	userHandler := NewUserHandler(deps.Users, deps.AuthConfig, deps.Logger)
	assistantHandler := NewAssistantHandler(deps.Assistant, deps.Logger)
	adminHandler := NewAdminHandler(deps.Alerts, deps.Incidents, deps.Users, deps.Moods, deps.Assistant, deps.Clock, deps.Logger)

	authMiddleware := auth.Middleware(deps.AuthConfig, deps.Clock)
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authMiddleware(h).ServeHTTP(w, r)
		}
	}
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(func(w http.ResponseWriter, r *http.Request) {
			auth.RequireAdmin(h).ServeHTTP(w, r)
		})
	}

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/register", withCORS(authHandler.Register))
	mux.HandleFunc("/api/auth/login", withCORS(authHandler.Login))

	// Admin bootstrap (public, gated by the setup secret)
	mux.HandleFunc("/api/admin/setup", withCORS(userHandler.Setup))

	// SOS routes
	mux.HandleFunc("/api/sos", authed(sosHandler.HandleSOS))
	mux.HandleFunc("/api/sos/", adminOnly(sosHandler.HandleSOSByID))

	// Incident routes: reading and reporting are for any signed-in user,
	// workflow changes are admin-only
	mux.HandleFunc("/api/incidents", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch, http.MethodDelete:
			auth.RequireAdmin(http.HandlerFunc(incidentHandler.HandleIncidents)).ServeHTTP(w, r)
		default:
			incidentHandler.HandleIncidents(w, r)
		}
	}))

	// Wellbeing routes
	mux.HandleFunc("/api/wellbeing/moods", authed(wellbeingHandler.HandleMoods))
	mux.HandleFunc("/api/wellbeing/chat", authed(wellbeingHandler.HandleChat))

	// Assistant routes
	mux.HandleFunc("/api/assistant/chat", authed(assistantHandler.Chat))
	mux.HandleFunc("/api/assistant/summarize", authed(assistantHandler.Summarize))

	// Account preferences
	mux.HandleFunc("/api/me/preferences", authed(userHandler.UpdatePreferences))

	// Announcements: reading is public, publishing is admin-only
	mux.HandleFunc("/api/announcements", withCORS(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			announcementHandler.List(w, r)
		case http.MethodPost:
			adminOnly(announcementHandler.Create)(w, r)
		case http.MethodDelete:
			adminOnly(announcementHandler.Delete)(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}))

	// Admin surface
	mux.HandleFunc("/api/admin/users", adminOnly(userHandler.HandleAdminUsers))
	mux.HandleFunc("/api/admin/analytics", adminOnly(adminHandler.Analytics))
	mux.HandleFunc("/api/admin/activity-monitor", adminOnly(adminHandler.ActivityMonitor))
	mux.HandleFunc("/api/admin/mood-analysis", adminOnly(adminHandler.MoodAnalysis))

	// CORS preflight
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			preflight(w)
			return
		}
		http.NotFound(w, r)
	})
}

// withCORS adds CORS headers and preflight handling to a public route.
// Authenticated routes get the same treatment from auth.Middleware.
func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func preflight(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusOK)
}
