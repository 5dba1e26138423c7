package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeout: time.Second},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret-that-is-at-least-32-characters",
			TokenLifetime: time.Hour,
		},
		Engagement: config.EngagementConfig{DailyTarget: 10, Timezone: "UTC"},
	}
}

func memoryStores() appStores {
	s := memstore.New()
	return appStores{
		items:      s.Items,
		sessions:   s.Sessions,
		daily:      s.DailyProgress,
		streaks:    s.Streaks,
		bingo:      s.Bingo,
		bossRounds: s.BossRounds,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*application, http.Handler) {
	t.Helper()
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(cfg, l, memoryStores())
	require.NoError(t, err)
	return app, app.setupRouter()
}

func bearer(t *testing.T, app *application) string {
	t.Helper()
	token, err := app.jwtService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter(t *testing.T) {
	t.Parallel()
	app, router := newTestApp(t, testConfig())
	auth := bearer(t, app)

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK, "OK"},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "recall_"},
		{"api requires a token", http.MethodGet, "/api/engagement", "", http.StatusUnauthorized, ""},
		{"api rejects a bad token", http.MethodGet, "/api/engagement", "Bearer nope", http.StatusUnauthorized, ""},
		{"engagement state", http.MethodGet, "/api/engagement", auth, http.StatusOK, `"daily"`},
		{"due queue", http.MethodGet, "/api/reviews/due", auth, http.StatusOK, `"session_id"`},
		{"boss round locked", http.MethodGet, "/api/boss-round", auth, http.StatusConflict, ""},
		{"unknown route", http.MethodGet, "/api/cards", auth, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	app, router := newTestApp(t, cfg)
	auth := bearer(t, app)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/engagement", nil)
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "health is not rate limited")
}

func TestRunMigrations_UnknownCommand(t *testing.T) {
	t.Parallel()
	err := runMigrations(context.Background(), nil, "create", slog.Default())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown migration command"))
}

func TestMaskDatabaseURL(t *testing.T) {
	t.Parallel()
	masked := maskDatabaseURL("postgres://recall:hunter2@db:5432/recall?sslmode=disable")
	assert.NotContains(t, masked, "hunter2")
	assert.Contains(t, masked, "db:5432")
}
