package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-analyzer-web/config"
	"project-analyzer-web/models"
	"project-analyzer-web/services"
)

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0"},
		Backend: config.BackendConfig{
			BaseURL: backendURL,
			Timeout: 2 * time.Second,
		},
		Session: config.SessionConfig{
			Store:           "memory",
			TTL:             time.Hour,
			CleanupInterval: time.Hour,
			CookieName:      "analyzer_session",
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
		Features: config.FeaturesConfig{
			AlwaysFetchFlow:       true,
			RouteInfoPayloadShape: config.PayloadShapeContext,
		},
	}
}

func newTestServer(t *testing.T, backendURL string) *Server {
	t.Helper()
	srv := NewServer(testConfig(backendURL), services.NewDefaultLogger(), nil)
	t.Cleanup(func() { srv.store.Close() })
	return srv
}

func TestServer_UploadPageRoute(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1")

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Project Analyzer")
}

func TestServer_UnknownRouteIs404(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1")

	req := httptest.NewRequest("GET", "/definitely/not/here", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_HealthCheck_BackendHealthy(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.BackendHealthResponse{Status: "healthy"})
	}))
	defer backend.Close()

	srv := newTestServer(t, backend.URL)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var health services.SystemHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, services.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Components, "analysis_backend")
	assert.Contains(t, health.Components, "session_store")
}

func TestServer_HealthCheck_BackendUnreachableIsDegraded(t *testing.T) {
	// An unreachable backend degrades the service but keeps it serving.
	srv := newTestServer(t, "http://127.0.0.1:1")

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var health services.SystemHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, services.HealthStatusDegraded, health.Status)
}

func TestServer_SessionStats(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1")

	req := httptest.NewRequest("GET", "/api/sessions/stats", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats services.SessionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Size)
}
