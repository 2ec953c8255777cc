package httprequest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestExecute_GetDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "token-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "name": "ada"}`))
	}))
	defer srv.Close()

	ec := execution.NewContext("run-1", nil)
	e := &Executor{client: srv.Client()}

	out, err := e.Execute(testContext(t), map[string]any{
		"url":     srv.URL + "/users/7",
		"headers": map[string]any{"Authorization": "token-1"},
	}, ec)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, float64(200), m["status"])
	assert.Equal(t, map[string]any{"id": float64(7), "name": "ada"}, m["body"])
}

func TestExecute_PostSendsJSONBody(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	ec := execution.NewContext("run-1", nil)
	e := &Executor{client: srv.Client()}

	out, err := e.Execute(testContext(t), map[string]any{
		"url":    srv.URL,
		"method": "post",
		"body":   map[string]any{"name": "ada"},
	}, ec)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, float64(201), m["status"])
	// Non-JSON response bodies come back as the raw string.
	assert.Equal(t, "created", m["body"])
	assert.Equal(t, map[string]any{"name": "ada"}, received)
}

func TestExecute_NonOKStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ec := execution.NewContext("run-1", nil)
	e := &Executor{client: srv.Client()}

	out, err := e.Execute(testContext(t), map[string]any{"url": srv.URL}, ec)
	require.NoError(t, err)
	assert.Equal(t, float64(503), out.(map[string]any)["status"])
}

func TestExecute_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ec := execution.NewContext("run-1", nil)
	e := &Executor{client: http.DefaultClient}

	_, err := e.Execute(testContext(t), map[string]any{"url": srv.URL}, ec)
	assert.ErrorContains(t, err, "request failed")
}

func TestValidateConfig(t *testing.T) {
	e := &Executor{}

	assert.ErrorContains(t, e.ValidateConfig(map[string]any{}), "url")
	assert.ErrorContains(t, e.ValidateConfig(map[string]any{"url": "http://x", "method": "TRACE"}), "unsupported method")
	assert.NoError(t, e.ValidateConfig(map[string]any{"url": "http://x", "method": "post"}))
}
