package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spritedeck/spritedeck-agent/internal/db"
	"github.com/spritedeck/spritedeck-agent/internal/settings"
)

func setupAuthRepo(t *testing.T, token string) settings.Repository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := settings.NewRepository(database.Conn())
	if token != "" {
		if err := repo.SetSetting(context.Background(), settings.KeyAuthToken, token); err != nil {
			t.Fatalf("failed to seed auth token: %v", err)
		}
	}
	return repo
}

func authProtected(t *testing.T, repo settings.Repository) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(repo, logger)(next)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	repo := setupAuthRepo(t, "secret")
	handler := authProtected(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	repo := setupAuthRepo(t, "secret")
	handler := authProtected(t, repo)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status code = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_NoStoredToken(t *testing.T) {
	repo := setupAuthRepo(t, "")
	handler := authProtected(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestIsLoopbackRemoteAddr(t *testing.T) {
	loopback := []string{
		"127.0.0.1:12345",
		"[::1]:12345",
	}
	for _, addr := range loopback {
		if !isLoopbackRemoteAddr(addr) {
			t.Errorf("isLoopbackRemoteAddr(%q) = false, want true", addr)
		}
	}

	nonLoopback := []string{
		"8.8.8.8:12345",
		"192.168.1.1:8080",
		"10.0.0.1:3000",
		"not-an-ip:1234",
		"127.0.0.1",
	}
	for _, addr := range nonLoopback {
		if isLoopbackRemoteAddr(addr) {
			t.Errorf("isLoopbackRemoteAddr(%q) = true, want false", addr)
		}
	}
}

func TestLoopbackMiddleware_RejectsRemote(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := LoopbackMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = "192.168.1.50:40000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequestIDMiddleware_SetsHeader(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(RequestIDKey).(string)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	header := rr.Header().Get("X-Request-ID")
	if header == "" {
		t.Fatal("X-Request-ID header not set")
	}
	if seen != header {
		t.Errorf("context request id = %q, header = %q, want them equal", seen, header)
	}
}

func TestRecoveryMiddleware_CatchesPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
