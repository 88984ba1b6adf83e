package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/mcp", "/mcp"},
		{"/mcp/a1b2c3d4e5f6", "/mcp/:session"},
		{"/sessions/550e8400-e29b-41d4-a716-446655440000", "/sessions/:uuid"},
		{"/items/12345/detail", "/items/:id/detail"},
		{"/healthz", "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePath(tt.path))
		})
	}
}

func TestHTTPMetrics_NilProviderPassesThrough(t *testing.T) {
	called := false
	handler := HTTPMetrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	// A second WriteHeader must not overwrite the recorded status.
	rw.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusNotFound, rw.statusCode)
}

func TestResponseWriter_DefaultStatusOnWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	_, err := rw.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rw.statusCode)
}
