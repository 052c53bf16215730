package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/database"
	"github.com/campuspulse/campuspulse/internal/models"
	"log/slog"
)

// AnnouncementHandler handles campus notices. Reading is public; writing is
// admin-only via the router.
type AnnouncementHandler struct {
	announcements AnnouncementStore
	clock         clock.Clock
	logger        *slog.Logger
}

// NewAnnouncementHandler creates a new announcement handler.
func NewAnnouncementHandler(announcements AnnouncementStore, clk clock.Clock, logger *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcements: announcements,
		clock:         clk,
		logger:        logger,
	}
}

// AnnouncementRequest represents an announcement create request.
type AnnouncementRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// AnnouncementListResponse is the GET /api/announcements payload.
type AnnouncementListResponse struct {
	Announcements []models.Announcement `json:"announcements"`
}

// List handles GET /api/announcements.
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}

	announcements, err := h.announcements.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list announcements", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AnnouncementListResponse{Announcements: announcements})
}

// Create handles POST /api/announcements.
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AnnouncementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Priority == "" {
		req.Priority = "normal"
	}
	if err := ValidateAnnouncement(req.Title, req.Message, req.Priority); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	announcement, err := h.announcements.Create(r.Context(), models.Announcement{
		Title:     req.Title,
		Message:   req.Message,
		Priority:  req.Priority,
		Timestamp: h.clock.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("failed to create announcement", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create announcement")
		return
	}

	h.logger.Info("announcement published", "announcement_id", announcement.ID, "priority", announcement.Priority)
	writeJSON(w, http.StatusCreated, announcement)
}

// Delete handles DELETE /api/announcements?id=.
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Announcement ID required")
		return
	}

	if err := h.announcements.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Announcement not found")
			return
		}
		h.logger.Error("failed to delete announcement", "announcement_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("announcement deleted", "announcement_id", id)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusNoContent)
}
