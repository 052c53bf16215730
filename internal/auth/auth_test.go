package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/models"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

var testTime = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func TestTokenRoundTrip(t *testing.T) {
	clk := fixedClock{t: testTime}

	token, err := GenerateToken("u1", models.RoleAdmin, "secret", time.Hour, clk)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	identity, err := ValidateToken(token, "secret", clk)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if identity.UserID != "u1" {
		t.Errorf("expected user u1, got %q", identity.UserID)
	}
	if identity.Role != models.RoleAdmin {
		t.Errorf("expected admin role, got %q", identity.Role)
	}
	if !identity.IsAdmin() {
		t.Error("expected IsAdmin true for admin identity")
	}
}

func TestTokenRejectedAfterExpiry(t *testing.T) {
	issued := fixedClock{t: testTime}

	token, err := GenerateToken("u1", models.RoleStudent, "secret", time.Hour, issued)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	later := fixedClock{t: testTime.Add(2 * time.Hour)}
	if _, err := ValidateToken(token, "secret", later); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	clk := fixedClock{t: testTime}

	token, err := GenerateToken("u1", models.RoleStudent, "secret", time.Hour, clk)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := ValidateToken(token, "other-secret", clk); err == nil {
		t.Error("expected token signed with a different secret to be rejected")
	}
}

func TestTokenValidatesUnderCorrectedClock(t *testing.T) {
	// A host clock 10 minutes fast, corrected by a negative offset. Tokens
	// issued and validated through the corrected clock must agree.
	skewed := clock.NewOffsetClock(-10 * time.Minute)

	token, err := GenerateToken("u1", models.RoleStudent, "secret", time.Hour, skewed)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := ValidateToken(token, "secret", skewed); err != nil {
		t.Errorf("token should validate under the same corrected clock: %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !CheckPassword("hunter22", hash) {
		t.Error("expected correct password to verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("expected wrong password to fail")
	}
}

func middlewareProbe(clk clock.Clock) (http.Handler, *Identity) {
	config := Config{JWTSecret: "secret", TokenDuration: time.Hour}
	var seen Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if ok {
			seen = identity
		}
		w.WriteHeader(http.StatusOK)
	})
	return Middleware(config, clk)(inner), &seen
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	clk := fixedClock{t: testTime}
	handler, seen := middlewareProbe(clk)

	token, err := GenerateToken("u1", models.RoleStudent, "secret", time.Hour, clk)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.UserID != "u1" {
		t.Errorf("expected identity u1 in context, got %q", seen.UserID)
	}
}

func TestMiddlewareRejectsBadHeaders(t *testing.T) {
	clk := fixedClock{t: testTime}
	handler, _ := middlewareProbe(clk)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestMiddlewareAnswersPreflight(t *testing.T) {
	handler, _ := middlewareProbe(fixedClock{t: testTime})

	req := httptest.NewRequest(http.MethodOptions, "/api/sos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header on preflight response")
	}
}

func TestRequireAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(inner)

	tests := []struct {
		name     string
		identity *Identity
		want     int
	}{
		{"admin passes", &Identity{UserID: "u1", Role: models.RoleAdmin}, http.StatusOK},
		{"student forbidden", &Identity{UserID: "u2", Role: models.RoleStudent}, http.StatusForbidden},
		{"no identity forbidden", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.identity != nil {
				req = req.WithContext(ContextWithIdentity(req.Context(), *tt.identity))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
