// ABOUTME: Tests for CORS and rate limiting middleware
// ABOUTME: Exercises per-IP buckets, route classes, and preflight handling

package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/conversation"
	"github.com/parley-dev/parley/internal/preset"
)

func newLimitedGateway(t *testing.T, limits config.RateLimitConfig) *Gateway {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.RateLimit = limits
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := conversation.NewRegistry(time.Hour, time.Hour, logger)
	t.Cleanup(registry.Close)

	g := New(cfg, registry, &stubGenerator{}, preset.Empty(), logger)
	t.Cleanup(g.loopCancel)
	return g
}

func doGet(t *testing.T, handler http.Handler, path, forwardedFor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_BlocksAfterBudget(t *testing.T) {
	g := newLimitedGateway(t, config.RateLimitConfig{
		Default: 2, AnalyticsList: 100, AnalyticsDetail: 100, Export: 100,
	})
	handler := g.Handler()

	assert.Equal(t, http.StatusOK, doGet(t, handler, "/api/presets", "").Code)
	assert.Equal(t, http.StatusOK, doGet(t, handler, "/api/presets", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(t, handler, "/api/presets", "").Code)
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	g := newLimitedGateway(t, config.RateLimitConfig{
		Default: 1, AnalyticsList: 100, AnalyticsDetail: 100, Export: 100,
	})
	handler := g.Handler()

	assert.Equal(t, http.StatusOK, doGet(t, handler, "/api/presets", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(t, handler, "/api/presets", "10.0.0.1").Code)

	// A different client still has budget.
	assert.Equal(t, http.StatusOK, doGet(t, handler, "/api/presets", "10.0.0.2").Code)
}

func TestRateLimit_ClassesAreIndependent(t *testing.T) {
	g := newLimitedGateway(t, config.RateLimitConfig{
		Default: 100, AnalyticsList: 1, AnalyticsDetail: 100, Export: 100,
	})
	handler := g.Handler()

	assert.Equal(t, http.StatusOK, doGet(t, handler, "/api/analytics/conversations", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(t, handler, "/api/analytics/conversations", "").Code)

	// The exhausted list budget does not affect the default class.
	assert.Equal(t, http.StatusOK, doGet(t, handler, "/api/presets", "").Code)
}

func TestRateLimit_HealthIsUnlimited(t *testing.T) {
	g := newLimitedGateway(t, config.RateLimitConfig{
		Default: 1, AnalyticsList: 1, AnalyticsDetail: 1, Export: 1,
	})
	handler := g.Handler()

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doGet(t, handler, "/health", "").Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name         string
		remoteAddr   string
		forwardedFor string
		want         string
	}{
		{"remote addr only", "192.0.2.1:1234", "", "192.0.2.1"},
		{"forwarded single", "192.0.2.1:1234", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain uses first", "192.0.2.1:1234", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"forwarded with spaces", "192.0.2.1:1234", "  203.0.113.7  ", "203.0.113.7"},
		{"unparseable remote addr", "not-an-addr", "", "not-an-addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	g := newLimitedGateway(t, config.RateLimitConfig{
		Default: 100, AnalyticsList: 100, AnalyticsDetail: 100, Export: 100,
	})
	handler := g.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	g := newLimitedGateway(t, config.RateLimitConfig{
		Default: 100, AnalyticsList: 100, AnalyticsDetail: 100, Export: 100,
	})
	handler := g.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	g := newLimitedGateway(t, config.RateLimitConfig{
		Default: 100, AnalyticsList: 100, AnalyticsDetail: 100, Export: 100,
	})
	handler := g.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/conversations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardOrigin(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.RateLimit = config.RateLimitConfig{Default: 100, AnalyticsList: 100, AnalyticsDetail: 100, Export: 100}
	cfg.CORS.AllowedOrigins = []string{"*"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := conversation.NewRegistry(time.Hour, time.Hour, logger)
	t.Cleanup(registry.Close)

	g := New(cfg, registry, &stubGenerator{}, preset.Empty(), logger)
	t.Cleanup(g.loopCancel)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://anywhere.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
