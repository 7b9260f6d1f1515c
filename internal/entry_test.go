package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/jotter/internal/testutil"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Auth.Secret = "0123456789abcdef"
	h, err := NewHandler(cfg, testutil.TestStore(t))
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestHealthEndpoints(t *testing.T) {
	h := testHandler(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("%s body = %s", path, rec.Body.String())
		}
	}
}

func TestRootRouting(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Errorf("/api/notes = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("/ = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(t.Context()); err == nil {
		t.Fatal("Run without config should fail")
	}
}
