package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"tutorhub/internal/service"
)

func authFixture(t *testing.T) (*Server, string) {
	t.Helper()

	// JWT-методы не трогают хранилище
	users := service.NewUserService(nil, nil, "test-secret", zap.NewNop())
	token, err := users.GenerateJWT("u1")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	return &Server{users: users, logger: zap.NewNop()}, token
}

func TestAuthMiddlewarePassesUserID(t *testing.T) {
	s, token := authFixture(t)

	var gotUserID string
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = requestUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "u1" {
		t.Errorf("user id in context = %q, want u1", gotUserID)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	s, token := authFixture(t)

	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without valid auth")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic " + token},
		{"malformed", "Bearer"},
		{"garbage token", "Bearer garbage"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tt.name, rec.Code)
		}
	}
}

func TestWebsocketUserIDFromQuery(t *testing.T) {
	s, token := authFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/ws/feed?token="+token, nil)
	userID, err := s.websocketUserID(req)
	if err != nil {
		t.Fatalf("websocketUserID: %v", err)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws/feed", nil)
	if _, err := s.websocketUserID(req); err == nil {
		t.Error("expected error without token")
	}
}
