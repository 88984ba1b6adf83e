package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()

	sc, err := NewServerContext(context.Background(), WithK8sClient(&mockK8sClient{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestLivenessHandler(t *testing.T) {
	checker := NewHealthChecker(newTestServerContext(t))

	rec := httptest.NewRecorder()
	checker.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "0.1.0", response.Version)
}

func TestReadinessHandler(t *testing.T) {
	checker := NewHealthChecker(newTestServerContext(t))

	rec := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "ok", response.Checks["ready"])
	assert.Equal(t, "ok", response.Checks["shutdown"])
}

func TestReadinessHandler_NotReady(t *testing.T) {
	checker := NewHealthChecker(newTestServerContext(t))
	checker.SetReady(false)
	assert.False(t, checker.IsReady())

	rec := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "not ready", response.Status)
	assert.Equal(t, "not ready", response.Checks["ready"])
}

func TestReadinessHandler_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)
	checker := NewHealthChecker(sc)
	require.NoError(t, sc.Shutdown())

	rec := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newTestServerContext(t)
	sc.Metrics().IncrementToolCalls()
	sc.Metrics().IncrementMutationsBlocked()
	checker := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	checker.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "local", response.Mode)
	assert.Equal(t, 0, response.ActiveSessions)
	require.NotNil(t, response.Tools)
	assert.Equal(t, int64(1), response.Tools.Calls)
	assert.Equal(t, int64(1), response.Tools.MutationsBlocked)
	require.NotNil(t, response.Instrumentation)
	assert.False(t, response.Instrumentation.Enabled)
}

func TestDetailedHealthHandler_InClusterMode(t *testing.T) {
	sc, err := NewServerContext(context.Background(),
		WithK8sClient(&mockK8sClient{}),
		WithInCluster(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	checker := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	checker.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	var response DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "in-cluster", response.Mode)
}

func TestRegisterHealthEndpoints(t *testing.T) {
	checker := NewHealthChecker(newTestServerContext(t))

	mux := http.NewServeMux()
	checker.RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
