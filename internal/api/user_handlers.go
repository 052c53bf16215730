package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campuspulse/campuspulse/internal/auth"
	"github.com/campuspulse/campuspulse/internal/database"
	"github.com/campuspulse/campuspulse/internal/models"
	"log/slog"
)

// UserHandler handles account preferences and the admin user surface.
type UserHandler struct {
	users  UserStore
	config auth.Config
	logger *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users UserStore, config auth.Config, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		config: config,
		logger: logger,
	}
}

// UpdatePreferences handles POST /api/me/preferences. Callers replace their
// whole preferences object; there is no per-field patch.
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var prefs models.Preferences
	if !decodeJSON(w, r, &prefs) {
		return
	}

	switch prefs.FontSize {
	case "", "small", "medium", "large", "xl":
	default:
		writeError(w, http.StatusBadRequest, "Invalid font size. Must be: small, medium, large, or xl")
		return
	}
	if prefs.FontSize == "" {
		prefs.FontSize = "medium"
	}
	if prefs.Language == "" {
		prefs.Language = "en"
	}

	if err := h.users.UpdatePreferences(r.Context(), identity.UserID, prefs); err != nil {
		h.logger.Error("failed to update preferences", "user_id", identity.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

// UserListResponse is the GET /api/admin/users payload.
type UserListResponse struct {
	Users []models.User `json:"users"`
	Count int           `json:"count"`
}

// HandleAdminUsers handles GET /api/admin/users and PATCH /api/admin/users.
func (h *UserHandler) HandleAdminUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listUsers(w, r)
	case http.MethodPatch:
		h.updateRole(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}

	users, err := h.users.ListAll(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{Users: users, Count: len(users)})
}

func (h *UserHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "User ID required")
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid role. Must be: student, admin, or volunteer")
		return
	}

	if err := h.users.UpdateRole(r.Context(), req.ID, role); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to update role", "user_id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user role updated", "user_id", req.ID, "role", role)
	writeJSON(w, http.StatusOK, map[string]string{"id": req.ID, "role": string(role)})
}

// SetupRequest represents the one-time admin promotion request.
type SetupRequest struct {
	Secret string `json:"secret"`
	Email  string `json:"email"`
}

// Setup handles POST /api/admin/setup. It promotes an existing account to
// admin when the out-of-band setup secret matches. The route is public so a
// fresh deployment can bootstrap its first admin.
func (h *UserHandler) Setup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SetupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Secret == "" || req.Secret != h.config.SetupSecret {
		h.logger.Warn("rejected admin setup attempt", "ip", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "Invalid setup secret")
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.UpdateRoleByEmail(r.Context(), req.Email, models.RoleAdmin); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No account with this email")
			return
		}
		h.logger.Error("failed to promote account", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("account promoted to admin", "email", req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email, "role": string(models.RoleAdmin)})
}
