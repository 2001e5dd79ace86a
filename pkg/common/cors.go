package common

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bitechdev/specgateway/pkg/config"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSConfig builds a CORSConfig from the loaded application
// configuration, falling back to the package defaults when cfg is nil.
func DefaultCORSConfig(cfg *config.Config) CORSConfig {
	if cfg == nil {
		return CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: GatewayHeaders(),
			MaxAge:         86400,
		}
	}

	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 && cfg.Server.BaseURL != "" {
		origins = []string{cfg.Server.BaseURL}
	}

	methods := cfg.CORS.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}

	headers := cfg.CORS.AllowedHeaders
	if len(headers) == 0 {
		headers = GatewayHeaders()
	}

	maxAge := cfg.CORS.MaxAge
	if maxAge == 0 {
		maxAge = 86400
	}

	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		MaxAge:         maxAge,
	}
}

// GatewayHeaders returns the request headers the gateway understands.
func GatewayHeaders() []string {
	return []string{
		"Content-Type",
		"Authorization",
		"Accept",
		"Accept-Language",
		"Content-Language",
		"X-Request-Id",
	}
}

// SetCORSHeaders sets CORS headers on a response writer
func SetCORSHeaders(w ResponseWriter, config CORSConfig) {
	// Set allowed origins
	if len(config.AllowedOrigins) > 0 {
		w.SetHeader("Access-Control-Allow-Origin", strings.Join(config.AllowedOrigins, ", "))
	}

	// Set allowed methods
	if len(config.AllowedMethods) > 0 {
		w.SetHeader("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
	}

	// Set allowed headers
	if len(config.AllowedHeaders) > 0 {
		w.SetHeader("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
	}

	// Set max age
	if config.MaxAge > 0 {
		w.SetHeader("Access-Control-Max-Age", fmt.Sprintf("%d", config.MaxAge))
	}

	// Allow credentials
	w.SetHeader("Access-Control-Allow-Credentials", "true")

	// Expose headers that clients can read
	w.SetHeader("Access-Control-Expose-Headers", "X-Next-Page-Cursor, X-Prev-Page-Cursor")
}

// SecurityHeaders sets the response security headers applied globally to
// every request, mirroring a strict same-origin default policy.
func SecurityHeaders(w ResponseWriter) {
	w.SetHeader("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'")
	w.SetHeader("X-Frame-Options", "SAMEORIGIN")
	w.SetHeader("X-Content-Type-Options", "nosniff")
	w.SetHeader("Referrer-Policy", "no-referrer-when-downgrade")
	w.SetHeader("Feature-Policy", "camera 'none'; microphone 'none'; geolocation 'none'")
}

// SecurityMiddleware wraps an http.Handler, applying CORS and security
// headers to every response ahead of the wrapped handler, and short-
// circuiting CORS preflight OPTIONS requests.
func SecurityMiddleware(cors CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp, _ := WrapHTTPRequest(w, r)
			SetCORSHeaders(resp, cors)
			SecurityHeaders(resp)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
