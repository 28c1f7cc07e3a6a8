package server

import (
	"net/http"
	"strings"

	"atscore/internal/config"
	"atscore/internal/observability"
)

// setupRoutes registers the public probes and the protected scoring endpoints
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	mux := http.NewServeMux()

	rateLimit := s.rateLimitMiddleware()
	requestLimit := s.requestSizeLimitMiddleware()
	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimit(s.authMiddleware(requestLimit(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("POST /analyze", protect(handleJSON(s, om, "analyze", s.analyzeOperation)))
	mux.HandleFunc("POST /scores", protect(handleJSON(s, om, "scores", s.scoresOperation)))
	mux.HandleFunc("POST /skills", protect(handleJSON(s, om, "skills", s.skillsOperation)))
	mux.HandleFunc("POST /readiness", protect(handleJSON(s, om, "readiness", s.readinessOperation)))
	mux.HandleFunc("POST /report", protect(s.reportHandler(om)))

	return mux
}

// authMiddleware rejects requests without a currently valid API key. With
// no keys configured every request passes.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.hasAPIKeys() {
			next(w, r)
			return
		}

		key := requestAPIKey(r)
		fields := []any{"endpoint", r.URL.Path, "client_ip", clientIP(r), "api_key", config.MaskSecret(key)}
		switch {
		case key == "":
			s.Logger.Info("rejected request without API key", fields...)
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", "", http.StatusUnauthorized)
		case !s.validAPIKey(key):
			s.Logger.Info("rejected request with unknown API key", fields...)
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", "", http.StatusUnauthorized)
		default:
			s.Logger.Debug("authenticated request", fields...)
			next(w, r)
		}
	}
}

// requestAPIKey reads X-API-Key, falling back to an Authorization bearer token
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// requestSizeLimitMiddleware caps request bodies at MaxRequestSize
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.MaxRequestSize <= 0 {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			next(w, r)
		}
	}
}
