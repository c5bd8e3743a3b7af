package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestWithSecurityHeaders(t *testing.T) {
	h := WithSecurityHeaders(http.HandlerFunc(noContent))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options mismatch: %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options mismatch: %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control mismatch: %q", got)
	}
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("did not expect HSTS for non-https request, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got == "" {
		t.Fatalf("expected HSTS header on forwarded https request")
	}
}

func TestWithCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "no list allows any origin", origin: "http://evil.test", want: "*"},
		{name: "wildcard entry", allowed: []string{"*"}, origin: "http://a.test", want: "*"},
		{name: "listed origin echoed", allowed: []string{"http://localhost:5173/"}, origin: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "unlisted origin omitted", allowed: []string{"http://localhost:5173"}, origin: "http://evil.test", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := WithCORS(tc.allowed)(http.HandlerFunc(noContent))
			req := httptest.NewRequest(http.MethodPost, "/api/ai/generate", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWithCORSPreflightShortCircuits(t *testing.T) {
	called := false
	h := WithCORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/ai/generate", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || called {
		t.Fatalf("preflight should return 204 without calling next (code=%d called=%v)", rec.Code, called)
	}
}

func TestWithCORSExposesResponseHeaders(t *testing.T) {
	h := WithCORS(nil)(http.HandlerFunc(noContent))
	req := httptest.NewRequest(http.MethodPost, "/api/ai/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	for _, name := range []string{RequestIDHeader, "X-Generation-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"} {
		if !strings.Contains(exposed, name) {
			t.Fatalf("Access-Control-Expose-Headers = %q, missing %s", exposed, name)
		}
	}
}
