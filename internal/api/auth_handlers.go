package api

import (
	"net/http"
	"time"

	"github.com/campuspulse/campuspulse/internal/auth"
	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/models"
	"log/slog"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  UserStore
	config auth.Config
	clock  clock.Clock
	logger *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(users UserStore, config auth.Config, clk clock.Clock, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		config: config,
		clock:  clk,
		logger: logger,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AdminCode string `json:"admin_code,omitempty"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := ValidateRegistration(req.Name, req.Email, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to check existing account", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "An account with this email already exists")
		return
	}

	role := models.RoleStudent
	if req.AdminCode != "" && h.config.AdminCode != "" && req.AdminCode == h.config.AdminCode {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.Create(r.Context(), models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Preferences:  models.DefaultPreferences(),
	})
	if err != nil {
		h.logger.Error("failed to create account", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("account registered", "user_id", user.ID, "role", user.Role)
	h.respondWithToken(w, http.StatusCreated, user)
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up account", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Generic message either way to prevent account enumeration
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		h.logger.Warn("failed login attempt", "ip", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.logger.Info("successful login", "user_id", user.ID, "ip", r.RemoteAddr)
	h.respondWithToken(w, http.StatusOK, *user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := auth.GenerateToken(user.ID, user.Role, h.config.JWTSecret, h.config.TokenDuration, h.clock)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: h.clock.Now().Add(h.config.TokenDuration),
		User:      user,
	})
}
