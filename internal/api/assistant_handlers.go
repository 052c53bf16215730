package api

import (
	"net/http"

	"github.com/campuspulse/campuspulse/internal/assistant"
	"log/slog"
)

const maxSummarizeLen = 20000

// AssistantHandler handles the general assistant chat surface.
type AssistantHandler struct {
	assistant *assistant.Assistant
	logger    *slog.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(ai *assistant.Assistant, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: ai, logger: logger}
}

// AssistantChatRequest is a campus chat turn. Mode selects the answer
// register; language is an ISO code hint.
type AssistantChatRequest struct {
	Message  string `json:"message"`
	Mode     string `json:"mode,omitempty"`     // plain|eli10|bullets
	Language string `json:"language,omitempty"` // en|ta|hi
	Topic    string `json:"topic,omitempty"`    // campus|health
}

// Chat handles POST /api/assistant/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AssistantChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := ValidateChatMessage(req.Message, maxChatMessageLen); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var reply string
	var err error
	if req.Topic == "health" {
		reply, err = h.assistant.HealthInfo(r.Context(), req.Message)
	} else {
		reply, err = h.assistant.CampusChat(r.Context(), req.Message, req.Mode, req.Language)
	}
	if err != nil {
		h.logger.Error("assistant chat failed", "topic", req.Topic, "error", err)
		writeError(w, http.StatusBadGateway, "Assistant is unavailable right now")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// SummarizeRequest carries the text to condense or simplify.
type SummarizeRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"` // summarize|explain
}

// SummarizeResponse is the condensed text.
type SummarizeResponse struct {
	Result string `json:"result"`
}

// Summarize handles POST /api/assistant/summarize.
func (h *AssistantHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := ValidateChatMessage(req.Text, maxSummarizeLen); err != nil {
		writeError(w, http.StatusBadRequest, ValidationError{Field: "text", Message: "Text is required"}.Error())
		return
	}

	var result string
	var err error
	if req.Mode == "explain" {
		result, err = h.assistant.Explain(r.Context(), req.Text)
	} else {
		result, err = h.assistant.Summarize(r.Context(), req.Text)
	}
	if err != nil {
		h.logger.Error("summarize failed", "mode", req.Mode, "error", err)
		writeError(w, http.StatusBadGateway, "Assistant is unavailable right now")
		return
	}

	writeJSON(w, http.StatusOK, SummarizeResponse{Result: result})
}
