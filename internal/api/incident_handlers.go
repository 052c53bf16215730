package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/campuspulse/campuspulse/internal/auth"
	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/database"
	"github.com/campuspulse/campuspulse/internal/models"
	"github.com/campuspulse/campuspulse/internal/ranking"
	"github.com/campuspulse/campuspulse/internal/triage"
	"log/slog"
)

// IncidentHandler handles the incident reporting surface.
type IncidentHandler struct {
	incidents IncidentStore
	users     UserStore
	resolver  *triage.SeverityResolver
	clock     clock.Clock
	logger    *slog.Logger
}

// NewIncidentHandler creates a new incident handler.
func NewIncidentHandler(incidents IncidentStore, users UserStore, resolver *triage.SeverityResolver, clk clock.Clock, logger *slog.Logger) *IncidentHandler {
	return &IncidentHandler{
		incidents: incidents,
		users:     users,
		resolver:  resolver,
		clock:     clk,
		logger:    logger,
	}
}

// ReportRequest represents an incident report submission.
type ReportRequest struct {
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Location    *models.Location `json:"location,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Severity    string           `json:"severity,omitempty"` // reporter's own estimate
}

// ReportResponse confirms a created incident.
type ReportResponse struct {
	Success bool            `json:"success"`
	Report  models.Incident `json:"report"`
}

// IncidentListResponse is the GET /api/incidents payload.
type IncidentListResponse struct {
	Incidents []models.EnrichedIncident `json:"incidents"`
}

// HandleIncidents handles POST, GET, PATCH and DELETE on /api/incidents.
// PATCH and DELETE are admin-only; the router enforces that.
func (h *IncidentHandler) HandleIncidents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.report(w, r)
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPatch:
		h.updateStatus(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// report creates an incident. Severity is assigned exactly once here: the
// classifier's answer when it is a valid level, otherwise the reporter's own
// estimate. Classifier trouble never fails the submission.
func (h *IncidentHandler) report(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Type) == "" {
		writeError(w, http.StatusBadRequest, "Incident type is required")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "Description is required")
		return
	}

	reporterSeverity := models.SeverityMedium
	if req.Severity != "" {
		parsed, err := models.ParseSeverity(req.Severity)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid severity. Must be: low, medium, high, or critical")
			return
		}
		reporterSeverity = parsed
	}

	severity := h.resolver.Resolve(r.Context(), req.Type, req.Description, reporterSeverity)

	incident, err := h.incidents.Create(r.Context(), models.Incident{
		UserID:      identity.UserID,
		Type:        req.Type,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Severity:    severity,
		Status:      models.IncidentStatusPending,
		Timestamp:   h.clock.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("failed to create incident", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create incident")
		return
	}

	h.logger.Info("incident reported",
		"incident_id", incident.ID,
		"user_id", identity.UserID,
		"type", incident.Type,
		"severity", incident.Severity)

	writeJSON(w, http.StatusCreated, ReportResponse{Success: true, Report: incident})
}

// list returns all incidents ranked by severity then recency.
func (h *IncidentHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}

	incidents, err := h.incidents.ListAll(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list incidents", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	profiles, err := h.users.ProfilesByID(r.Context())
	if err != nil {
		h.logger.Warn("profile lookup failed, serving incidents without names", "error", err)
		profiles = map[string]models.Profile{}
	}

	enriched := ranking.EnrichIncidents(incidents, profiles)
	ranking.RankIncidents(enriched)

	writeJSON(w, http.StatusOK, IncidentListResponse{Incidents: enriched})
}

// updateStatus moves an incident through its workflow. No transition guard:
// pending straight to resolved is allowed.
func (h *IncidentHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Incident ID required")
		return
	}

	status, err := models.ParseIncidentStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status. Must be: pending, approved, or resolved")
		return
	}

	if err := h.incidents.UpdateStatus(r.Context(), req.ID, status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Incident not found")
			return
		}
		h.logger.Error("failed to update incident status", "incident_id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("incident status updated", "incident_id", req.ID, "status", status)
	writeJSON(w, http.StatusOK, map[string]string{"id": req.ID, "status": string(status)})
}

func (h *IncidentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Incident ID required")
		return
	}

	if err := h.incidents.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Incident not found")
			return
		}
		h.logger.Error("failed to delete incident", "incident_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("incident deleted", "incident_id", id)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusNoContent)
}
