package jsonrpc

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowed := range s.corsConfig.AllowedOrigins {
				if origin == allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					break
				}
			}
		}
	}
	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}
	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}
	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", s.corsConfig.MaxAge))
	}
}

// CORSFromEnv reads CORS_ALLOWED_ORIGINS, CORS_ALLOWED_METHODS,
// CORS_ALLOWED_HEADERS (comma separated) and CORS_MAX_AGE (seconds).
// ok is false when none of them is set.
func CORSFromEnv() (CORSConfig, bool) {
	var maxAge int
	if raw := os.Getenv("CORS_MAX_AGE"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			maxAge = v
		}
	}
	cfg := CORSConfig{
		AllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AllowedMethods: splitAndTrim(os.Getenv("CORS_ALLOWED_METHODS")),
		AllowedHeaders: splitAndTrim(os.Getenv("CORS_ALLOWED_HEADERS")),
		MaxAge:         maxAge,
	}
	provided := len(cfg.AllowedOrigins) > 0 || len(cfg.AllowedMethods) > 0 || len(cfg.AllowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}
	return cfg, true
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
