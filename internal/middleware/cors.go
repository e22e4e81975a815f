package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is matched by OriginMatcher: exact origins such as
	// "tauri://localhost" or subdomain patterns such as "*.example.com".
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// ExposedHeaders are readable by the webview's fetch.
	ExposedHeaders []string
	// AllowCredentials must stay false when a pattern matches many hosts.
	AllowCredentials bool
	// MaxAge caches preflight answers, in seconds. Zero omits the header.
	MaxAge int
}

// DefaultCORSConfig allows origins to call the API. The desktop webview
// origin is usually the only entry.
func DefaultCORSConfig(origins ...string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Accept-Language", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         600,
	}
}

// OriginMatcher decides whether an Origin header is allowed. The CORS
// middleware and the events websocket share it so one origin list means the
// same thing to both.
type OriginMatcher struct {
	exact    map[string]bool
	suffixes []string
}

// NewOriginMatcher builds a matcher. Matching is case-insensitive; entries
// starting with "*." match any subdomain of the rest but not the bare domain.
func NewOriginMatcher(origins []string) OriginMatcher {
	m := OriginMatcher{exact: make(map[string]bool, len(origins))}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "":
		case strings.HasPrefix(o, "*."):
			m.suffixes = append(m.suffixes, o[1:])
		default:
			m.exact[o] = true
		}
	}
	return m
}

// Empty reports whether no origin was configured.
func (m OriginMatcher) Empty() bool {
	return len(m.exact) == 0 && len(m.suffixes) == 0
}

// Allows reports whether origin matches an entry.
func (m OriginMatcher) Allows(origin string) bool {
	origin = strings.ToLower(origin)
	if m.exact[origin] {
		return true
	}

	for _, suffix := range m.suffixes {
		host, ok := strings.CutSuffix(origin, suffix)
		if !ok {
			continue
		}
		// "https://api" + ".example.com" yes, "https://notexample.com" no
		if i := strings.Index(host, "://"); i >= 0 && len(host) > i+3 {
			return true
		}
	}
	return false
}

// CORS answers preflight requests and adds CORS headers for allowed
// origins. Disallowed preflights get 403; other disallowed requests pass
// through without CORS headers and the browser blocks the response.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := NewOriginMatcher(cfg.AllowedOrigins)
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !origins.Allows(origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
