package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheck struct{ err error }

func (s stubCheck) Ping(context.Context) error        { return s.err }
func (s stubCheck) HealthCheck(context.Context) error { return s.err }

func get(t *testing.T, mux http.Handler, path string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]string
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthMux(t *testing.T) {
	mux := newHealthMux(stubCheck{}, stubCheck{})

	rec, body := get(t, mux, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, body = get(t, mux, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])

	rec, _ = get(t, mux, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHealthMux_NotReady(t *testing.T) {
	rec, body := get(t, newHealthMux(stubCheck{err: errors.New("connection refused")}, stubCheck{}), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "connection refused", body["postgres"])

	rec, body = get(t, newHealthMux(stubCheck{}, stubCheck{err: errors.New("unavailable")}), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", body["zeebe"])
}
