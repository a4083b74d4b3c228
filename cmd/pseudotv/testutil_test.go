package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockServer is a fluent builder around httptest.Server that checks the
// incoming request before handing it to the configured responder.
type mockServer struct {
	t           *testing.T
	handler     http.HandlerFunc
	expectPath  string
	expectMeth  string
	expectQuery map[string]string
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	return &mockServer{t: t, expectQuery: map[string]string{}}
}

func (m *mockServer) ExpectPath(path string) *mockServer {
	m.expectPath = path
	return m
}

func (m *mockServer) ExpectGET() *mockServer {
	m.expectMeth = http.MethodGet
	return m
}

func (m *mockServer) ExpectPOST() *mockServer {
	m.expectMeth = http.MethodPost
	return m
}

// ExpectQuery requires query parameter key to equal value. An empty value
// requires the parameter to be absent.
func (m *mockServer) ExpectQuery(key, value string) *mockServer {
	m.expectQuery[key] = value
	return m
}

func (m *mockServer) RespondJSON(v any) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(m.t, w, v)
	}
	return m
}

// RespondAPIError answers the way the daemon reports failures.
func (m *mockServer) RespondAPIError(status int, code, message string) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
	}
	return m
}

func (m *mockServer) RespondPlainError(status int, message string) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, message, status)
	}
	return m
}

func (m *mockServer) RespondRaw(contentType, body string) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}
	return m
}

// Build starts the server and closes it when the test ends.
func (m *mockServer) Build() *httptest.Server {
	m.t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.expectPath != "" {
			assert.Equal(m.t, m.expectPath, r.URL.Path, "unexpected request path")
		}
		if m.expectMeth != "" {
			assert.Equal(m.t, m.expectMeth, r.Method, "unexpected request method")
		}
		for k, v := range m.expectQuery {
			assert.Equal(m.t, v, r.URL.Query().Get(k), "query parameter %s", k)
		}
		if m.handler != nil {
			m.handler(w, r)
		}
	}))
	m.t.Cleanup(srv.Close)
	return srv
}

func respondJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON response: %v", err)
	}
}
