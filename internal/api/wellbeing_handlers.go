package api

import (
	"net/http"
	"strconv"

	"github.com/campuspulse/campuspulse/internal/assistant"
	"github.com/campuspulse/campuspulse/internal/auth"
	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/models"
	"log/slog"
)

const maxChatMessageLen = 2000

// WellbeingHandler handles mood check-ins and the wellbeing chat.
type WellbeingHandler struct {
	moods     MoodStore
	assistant *assistant.Assistant
	clock     clock.Clock
	logger    *slog.Logger
}

// NewWellbeingHandler creates a new wellbeing handler.
func NewWellbeingHandler(moods MoodStore, ai *assistant.Assistant, clk clock.Clock, logger *slog.Logger) *WellbeingHandler {
	return &WellbeingHandler{
		moods:     moods,
		assistant: ai,
		clock:     clk,
		logger:    logger,
	}
}

// MoodRequest represents a mood check-in.
type MoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note,omitempty"`
}

// MoodListResponse is the GET /api/wellbeing/moods payload.
type MoodListResponse struct {
	Moods []models.MoodEntry `json:"moods"`
}

// HandleMoods handles POST /api/wellbeing/moods and GET /api/wellbeing/moods.
func (h *WellbeingHandler) HandleMoods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logMood(w, r)
	case http.MethodGet:
		h.listMoods(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *WellbeingHandler) logMood(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mood, err := models.ParseMood(req.Mood)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mood. Must be: happy, neutral, stressed, or sad")
		return
	}

	entry, err := h.moods.Create(r.Context(), models.MoodEntry{
		UserID:    identity.UserID,
		Mood:      mood,
		Note:      req.Note,
		Timestamp: h.clock.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("failed to log mood", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to log mood")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *WellbeingHandler) listMoods(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}

	moods, err := h.moods.ListByUser(r.Context(), identity.UserID, limit)
	if err != nil {
		h.logger.Error("failed to list moods", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MoodListResponse{Moods: moods})
}

// ChatRequest is a single chat turn.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat handles POST /api/wellbeing/chat.
func (h *WellbeingHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := ValidateChatMessage(req.Message, maxChatMessageLen); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.assistant.WellbeingChat(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("wellbeing chat failed", "error", err)
		writeError(w, http.StatusBadGateway, "Assistant is unavailable right now")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
