package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig decides which browser origins may call the board API and open
// the moderation socket.
type CORSConfig struct {
	// Entries are exact origins, "*" or a subdomain wildcard such as
	// "https://*.example.com".
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows the methods and headers the board routes use.
func DefaultCORSConfig(allowedOrigins []string) *CORSConfig {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &CORSConfig{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Type"},
		MaxAge:           600,
		AllowCredentials: true,
	}
}

// AllowsOrigin reports whether origin may make cross-origin requests.
func (c *CORSConfig) AllowsOrigin(origin string) bool {
	origin = strings.TrimSuffix(origin, "/")
	for _, allowed := range c.AllowedOrigins {
		allowed = strings.TrimSuffix(strings.TrimSpace(allowed), "/")
		switch {
		case allowed == "*" || strings.EqualFold(allowed, origin):
			return true
		case strings.Contains(allowed, "://*."):
			scheme, host, _ := strings.Cut(allowed, "://*.")
			if strings.HasPrefix(origin, scheme+"://") && strings.HasSuffix(origin, "."+host) {
				return true
			}
		}
	}
	return false
}

func (c *CORSConfig) allowsMethod(method string) bool {
	for _, m := range c.AllowedMethods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// CORSMiddleware answers preflights itself and decorates allowed requests.
// Preflights from unknown origins are refused with 403.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig(nil)
	}
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !config.AllowsOrigin(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Echo the origin so credentials work even with "*"
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if config.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if preflight {
				if !config.allowsMethod(r.Header.Get("Access-Control-Request-Method")) {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			w.Header().Set("Access-Control-Expose-Headers", exposed)
			next.ServeHTTP(w, r)
		})
	}
}
