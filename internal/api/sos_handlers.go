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

// SOSCounter counts triggered alerts for the metrics endpoint.
type SOSCounter interface {
	ObserveSOS()
}

// SOSHandler handles the SOS alert surface.
type SOSHandler struct {
	alerts   AlertStore
	users    UserStore
	resolver *triage.UrgencyResolver
	clock    clock.Clock
	counter  SOSCounter
	logger   *slog.Logger
}

// NewSOSHandler creates a new SOS handler. Counter may be nil.
func NewSOSHandler(alerts AlertStore, users UserStore, resolver *triage.UrgencyResolver, clk clock.Clock, counter SOSCounter, logger *slog.Logger) *SOSHandler {
	return &SOSHandler{
		alerts:   alerts,
		users:    users,
		resolver: resolver,
		clock:    clk,
		counter:  counter,
		logger:   logger,
	}
}

// TriggerRequest represents an SOS trigger.
type TriggerRequest struct {
	Location *models.Location `json:"location,omitempty"`
}

// TriggerResponse confirms a created alert. The score is repeated at the top
// level so clients do not need to dig into the record for it.
type TriggerResponse struct {
	Success      bool         `json:"success"`
	Alert        models.Alert `json:"alert"`
	UrgencyScore int          `json:"urgencyScore"`
}

// AlertListResponse is the GET /api/sos payload. StoreError carries a
// degraded-read message; the status code stays 200 either way.
type AlertListResponse struct {
	Alerts     []models.EnrichedAlert `json:"alerts"`
	StoreError string                 `json:"storeError,omitempty"`
}

// HandleSOS handles POST /api/sos and GET /api/sos.
func (h *SOSHandler) HandleSOS(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.trigger(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// trigger creates an alert, then scores it. The write is two-phase on
// purpose: the repeat-count snapshot must see the alert that was just
// created, so scoring happens after the insert and the score is patched on.
func (h *SOSHandler) trigger(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req TriggerRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	alert, err := h.alerts.Create(r.Context(), models.Alert{
		UserID:    identity.UserID,
		Location:  req.Location,
		Timestamp: h.clock.Now().UnixMilli(),
		Status:    models.AlertStatusActive,
	})
	if err != nil {
		h.logger.Error("failed to create alert", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create alert")
		return
	}

	repeatCount := 0
	if count, err := h.alerts.CountActiveByUser(r.Context(), identity.UserID); err == nil {
		// The snapshot is taken after the insert, so it includes the alert
		// being scored. Score on the other active alerts only.
		if count > 0 {
			repeatCount = count - 1
		}
	} else {
		h.logger.Warn("failed to snapshot repeat count", "error", err)
	}

	score := h.resolver.Resolve(r.Context(), triage.UrgencySignals{
		RepeatCount: repeatCount,
		HasLocation: req.Location != nil,
	})

	if err := h.alerts.SetUrgency(r.Context(), alert.ID, score); err != nil {
		// The alert exists and help is on the way; a lost score patch is
		// logged, not surfaced.
		h.logger.Error("failed to patch urgency score", "alert_id", alert.ID, "error", err)
	}
	alert.UrgencyScore = score

	if h.counter != nil {
		h.counter.ObserveSOS()
	}

	h.logger.Info("sos alert created",
		"alert_id", alert.ID,
		"user_id", identity.UserID,
		"urgency", score,
		"has_location", req.Location != nil)

	writeJSON(w, http.StatusCreated, TriggerResponse{
		Success:      true,
		Alert:        alert,
		UrgencyScore: score,
	})
}

// list returns alerts ranked by urgency then recency, optionally filtered by
// status. A store failure degrades to an empty list with the error message
// attached; this read path never returns a 5xx.
func (h *SOSHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}

	var alerts []models.Alert
	var err error
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, parseErr := models.ParseAlertStatus(raw)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid status. Must be: active or handled")
			return
		}
		alerts, err = h.alerts.ListByStatus(r.Context(), status)
	} else {
		alerts, err = h.alerts.ListAll(r.Context(), limit)
	}
	if err != nil {
		h.logger.Error("failed to list alerts, degrading to empty response", "error", err)
		writeJSON(w, http.StatusOK, AlertListResponse{
			Alerts:     []models.EnrichedAlert{},
			StoreError: err.Error(),
		})
		return
	}

	profiles, err := h.users.ProfilesByID(r.Context())
	if err != nil {
		h.logger.Warn("profile lookup failed, serving alerts without names", "error", err)
		profiles = map[string]models.Profile{}
	}

	enriched := ranking.EnrichAlerts(alerts, profiles)
	ranking.RankAlerts(enriched)

	writeJSON(w, http.StatusOK, AlertListResponse{Alerts: enriched})
}

// HandleSOSByID handles PATCH /api/sos/{id}/status and DELETE /api/sos/{id}.
// Both are admin-only; the router enforces that.
func (h *SOSHandler) HandleSOSByID(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status"):
		h.updateStatus(w, r)
	case r.Method == http.MethodDelete:
		h.delete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SOSHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, 3)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Alert ID required")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := models.ParseAlertStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status. Must be: active or handled")
		return
	}

	if err := h.alerts.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("failed to update alert status", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("alert status updated", "alert_id", id, "status", status)
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

func (h *SOSHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := pathSegment(r.URL.Path, 3)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Alert ID required")
		return
	}

	if err := h.alerts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("failed to delete alert", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("alert deleted", "alert_id", id)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusNoContent)
}

// pathSegment returns the nth slash-separated segment of a path, or "".
// For "/api/sos/{id}/status", segment 3 is the id.
func pathSegment(path string, n int) string {
	parts := strings.Split(path, "/")
	if len(parts) <= n {
		return ""
	}
	return parts[n]
}
