package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func writeStaticDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestServer_HealthOK(t *testing.T) {
	srv := New(Config{App: newTestApp(t, true), Logger: zaptest.NewLogger(t).Sugar()})

	rec := serve(srv, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Error != "" || resp.Uptime == "" {
		t.Errorf("health = %+v, want ok with uptime", resp)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := New(Config{App: newTestApp(t, true)})

	tests := []struct {
		method string
		path   string
		allow  string
	}{
		{http.MethodPost, "/api/health", http.MethodGet},
		{http.MethodDelete, "/api/lessons", http.MethodGet},
		{http.MethodGet, "/api/practice/stop", http.MethodPost},
		{http.MethodPost, "/api/word", http.MethodPut},
	}
	for _, tt := range tests {
		rec := serve(srv, tt.method, tt.path)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, http.StatusMethodNotAllowed)
			continue
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, tt.allow) {
			t.Errorf("%s %s Allow = %q, want it to contain %s", tt.method, tt.path, allow, tt.allow)
		}
	}
}

func TestServer_StaticFilesBehindAPI(t *testing.T) {
	index := "<html><body>signtutor</body></html>"
	dir := writeStaticDir(t, map[string]string{
		"index.html": index,
		"app.js":     "console.log('practice')",
	})
	srv := New(Config{StaticDir: dir, App: newTestApp(t, true)})

	rec := serve(srv, http.MethodGet, "/")
	if rec.Code != http.StatusOK || rec.Body.String() != index {
		t.Errorf("GET / = %d %q, want index.html", rec.Code, rec.Body.String())
	}

	rec = serve(srv, http.MethodGet, "/app.js")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "practice") {
		t.Errorf("GET /app.js = %d %q", rec.Code, rec.Body.String())
	}

	// API routes take precedence over files.
	rec = serve(srv, http.MethodGet, "/api/lessons")
	if ct := rec.Header().Get("Content-Type"); rec.Code != http.StatusOK || ct != "application/json" {
		t.Errorf("GET /api/lessons = %d %q, want JSON", rec.Code, ct)
	}

	for _, path := range []string{"/missing.js", "/api/nonexistent"} {
		if rec := serve(srv, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusNotFound)
		}
	}
}

func TestServer_WithoutApp(t *testing.T) {
	srv := New(Config{})

	if rec := serve(srv, http.MethodGet, "/api/health"); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", rec.Code, http.StatusOK)
	}
	for _, path := range []string{"/", "/api/lessons", "/api/practice", "/api/stream"} {
		if rec := serve(srv, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusNotFound)
		}
	}
}

func TestServer_RateLimit(t *testing.T) {
	srv := New(Config{App: newTestApp(t, true), RateLimit: 1})

	if rec := serve(srv, http.MethodPost, "/api/practice/stop"); rec.Code != http.StatusConflict {
		t.Fatalf("first stop status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if rec := serve(srv, http.MethodPost, "/api/practice/stop"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second stop status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	// Reads are not limited.
	for i := 0; i < 3; i++ {
		if rec := serve(srv, http.MethodGet, "/api/practice"); rec.Code != http.StatusOK {
			t.Errorf("GET /api/practice status = %d, want %d", rec.Code, http.StatusOK)
		}
	}
}

func TestServer_ShutdownBeforeListen(t *testing.T) {
	if err := New(Config{}).Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
