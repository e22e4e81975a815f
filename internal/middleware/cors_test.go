package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gitchest/gitchest/internal/config"
)

func TestOriginMatcher(t *testing.T) {
	t.Parallel()

	m := NewOriginMatcher([]string{"tauri://localhost", " http://localhost:1420 ", "*.gitchest.dev", ""})

	tests := []struct {
		origin string
		want   bool
	}{
		{"tauri://localhost", true},
		{"TAURI://LOCALHOST", true},
		{"http://localhost:1420", true},
		{"http://localhost:1421", false},
		{"https://app.gitchest.dev", true},
		{"https://a.b.gitchest.dev", true},
		{"https://gitchest.dev", false},
		{"https://notgitchest.dev", false},
		{"https://gitchest.dev.evil.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := m.Allows(tt.origin); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
	if m.Empty() {
		t.Error("matcher with entries should not be empty")
	}
	if !NewOriginMatcher(nil).Empty() || !NewOriginMatcher([]string{" "}).Empty() {
		t.Error("matcher without entries should be empty")
	}
}

func TestCORS_WebviewOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "tauri://localhost, *.gitchest.dev")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	mw := CORS(DefaultCORSConfig(cfg.GetCORSAllowedOrigins()...))

	var reached int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	})
	h := mw(next)

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
		wantReached bool
	}{
		{"webview get", http.MethodGet, "tauri://localhost", http.StatusOK, "tauri://localhost", true},
		{"subdomain get", http.MethodPost, "https://app.gitchest.dev", http.StatusOK, "https://app.gitchest.dev", true},
		{"same origin", http.MethodGet, "", http.StatusOK, "", true},
		{"foreign get passes without headers", http.MethodGet, "https://evil.example", http.StatusOK, "", true},
		{"foreign preflight", http.MethodOptions, "https://evil.example", http.StatusForbidden, "", false},
		{"webview preflight", http.MethodOptions, "tauri://localhost", http.StatusNoContent, "tauri://localhost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = 0
			req := httptest.NewRequest(tt.method, "/api/v1/users", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllowed)
			}
			if (reached == 1) != tt.wantReached {
				t.Errorf("next reached = %d, want %v", reached, tt.wantReached)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	t.Parallel()

	h := CORS(DefaultCORSConfig("tauri://localhost"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/toasts", nil)
	req.Header.Set("Origin", "tauri://localhost")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	methods := rec.Header().Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "POST", "DELETE", "OPTIONS"} {
		if !strings.Contains(methods, m) {
			t.Errorf("Allow-Methods %q missing %s", methods, m)
		}
	}
	for _, m := range []string{"PUT", "PATCH"} {
		if strings.Contains(methods, m) {
			t.Errorf("Allow-Methods %q should not offer %s", methods, m)
		}
	}

	headers := rec.Header().Get("Access-Control-Allow-Headers")
	if !strings.Contains(headers, "Content-Type") || !strings.Contains(headers, RequestIDHeader) {
		t.Errorf("Allow-Headers = %q", headers)
	}
	if strings.Contains(headers, "Authorization") || strings.Contains(headers, "X-API-Key") {
		t.Errorf("Allow-Headers %q should not offer credentials headers", headers)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Max-Age = %q, want 600", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q, want unset", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}
}

func TestCORS_ExposesRateLimitHeaders(t *testing.T) {
	t.Parallel()

	h := CORS(DefaultCORSConfig("tauri://localhost"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Origin", "tauri://localhost")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	for _, want := range []string{RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"} {
		if !strings.Contains(exposed, want) {
			t.Errorf("Expose-Headers %q missing %s", exposed, want)
		}
	}
}
