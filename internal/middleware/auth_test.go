package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intizom/intizom/internal/app/auth"
)

func newAuthHarness(t *testing.T) (*AuthMiddleware, *auth.Manager, http.Handler) {
	t.Helper()
	tokens := auth.NewManager("test-secret", 0, 0)
	mw := NewAuthMiddleware(tokens, nil, []string{"/healthz"})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", GetUserID(r.Context()))
		w.Header().Set("X-Role", GetUserRole(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	return mw, tokens, mw.Handler(next)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	_, tokens, handler := newAuthHarness(t)

	pair, err := tokens.IssuePair("user-1", "admin")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-User"); got != "user-1" {
		t.Fatalf("user id = %q", got)
	}
	if got := rec.Header().Get("X-Role"); got != "admin" {
		t.Fatalf("role = %q", got)
	}
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	_, _, handler := newAuthHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	_, _, handler := newAuthHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	_, tokens, handler := newAuthHarness(t)

	pair, err := tokens.IssuePair("user-1", "user")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareSkipPath(t *testing.T) {
	_, _, handler := newAuthHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
