package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"atscore/internal/semantic"

	"github.com/go-playground/validator/v10"
)

// breakerReporter is implemented by embedders guarded by a circuit breaker
type breakerReporter interface {
	BreakerStats() map[string]any
}

// getHealthCheckTimeout returns the configured embedding check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig != nil && s.AppConfig.Observability.HealthCheck.EmbeddingCheckTimeout > 0 {
		return s.AppConfig.Observability.HealthCheck.EmbeddingCheckTimeout
	}
	return 10 * time.Second
}

// healthHandler reports service health including the embedding model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "atscore",
		"version": s.Version,
	}
	healthy := true

	eng := s.Engine()
	if eng == nil {
		response["status"] = "starting"
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	response["vocabulary"] = map[string]any{"terms": eng.Vocabulary().Len()}

	if embedder := eng.Embedder(); embedder != nil {
		status := map[string]any{"provider": embedder.Name()}
		if inspector, ok := embedder.(semantic.ModelInspector); ok {
			ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
			info := inspector.ModelInfo(ctx)
			cancel()
			status["model"] = info
			if info != nil && !info.Available {
				healthy = false
			}
		}
		if reporter, ok := embedder.(breakerReporter); ok {
			if stats := reporter.BreakerStats(); stats != nil {
				status["circuit_breaker"] = stats
			}
		}
		response["embedding"] = status
	}

	code := http.StatusOK
	if !healthy {
		// Lexical scoring still works; semantic scores degrade to zero.
		response["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "atscore",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    len(*s.apiKeys.Load()),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	vocabulary := map[string]any{
		"reloads":  s.reloads.Load(),
		"watching": s.vocabWatcher != nil && s.vocabWatcher.IsRunning(),
	}
	if eng := s.Engine(); eng != nil {
		vocabulary["terms"] = eng.Vocabulary().Len()
	}
	if s.AppConfig != nil {
		vocabulary["file"] = s.AppConfig.Scoring.Vocabulary.File
	}
	response["vocabulary"] = vocabulary

	if s.keyWatcher != nil {
		response["api_key_rotation"] = s.keyWatcher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeRequest parses the JSON body into v and validates it
func (s *Server) decodeRequest(r *http.Request, v any) error {
	if err := parseJSONRequest(r, v); err != nil {
		return err
	}
	if err := s.validate.Struct(v); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

// validationMessage lists every failed field with its rule
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message, code string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	})
}
