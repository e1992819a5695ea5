// Package testutil holds helpers shared by HTTP-level tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/apollo/internal/api"
	"github.com/TimurManjosov/apollo/internal/console"
	"github.com/TimurManjosov/apollo/internal/store"
)

// NewTestConsole opens a console over a fresh in-memory store, so it starts
// with the seeded sample collection.
func NewTestConsole(t *testing.T, opts console.Options) (*console.Console, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	c, err := console.Open(context.Background(), memStore, opts)
	if err != nil {
		t.Fatalf("open console: %v", err)
	}
	return c, memStore
}

// NewTestServer creates a test server over a seeded in-memory console.
func NewTestServer(t *testing.T, adminKey string) (*api.Server, *console.Console) {
	t.Helper()
	c, _ := NewTestConsole(t, console.Options{})
	server := api.NewServer(c, api.Options{AdminAPIKey: adminKey, Logger: zerolog.Nop()})
	return server, c
}

// Bearer returns the Authorization header for key.
func Bearer(key string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + key}
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeJSON decodes the recorded body into v and fails the test on error.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response (status %d): %v", rr.Code, err)
	}
}
