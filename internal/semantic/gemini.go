package semantic

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"atscore/internal/config"
	"atscore/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiEmbedder embeds text with a Gemini embedding model.
type GeminiEmbedder struct {
	client       *genai.Client
	config       config.SemanticConfig
	breaker      *Breaker[[]float32]
	modelBreaker *Breaker[*genai.Model]
	logger       *errors.Logger
}

var (
	_ Embedder       = (*GeminiEmbedder)(nil)
	_ ModelInspector = (*GeminiEmbedder)(nil)
)

// NewGeminiEmbedder creates a Gemini client for cfg.Model.
func NewGeminiEmbedder(cfg config.SemanticConfig, logger *errors.Logger) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiEmbedder{
		client:       client,
		config:       cfg,
		breaker:      NewBreaker[[]float32]("gemini", cfg.CircuitBreaker, logger),
		modelBreaker: NewBreaker[*genai.Model]("gemini-model", cfg.CircuitBreaker, logger),
		logger:       logger,
	}, nil
}

// Name implements Embedder
func (g *GeminiEmbedder) Name() string { return config.ProviderGemini }

// Embed implements Embedder
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("atscore.semantic.gemini")
	ctx, span := tracer.Start(ctx, "gemini.embed_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("embedding.provider", "gemini"),
		attribute.String("embedding.model", g.config.Model),
		attribute.Int("input.length", len(text)),
	)

	embedConfig := &genai.EmbedContentConfig{TaskType: g.config.TaskType}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	values, err := g.breaker.Execute(func() ([]float32, error) {
		return g.executeWithRetry(ctx, "embed_content", func() ([]float32, error) {
			resp, err := g.client.Models.EmbedContent(ctx, g.config.Model, contents, embedConfig)
			if err != nil {
				return nil, err
			}
			if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
				return nil, fmt.Errorf("model %s returned no embedding", g.config.Model)
			}
			return resp.Embeddings[0].Values, nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to embed content", err)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("embedding.dimensions", len(values)),
	)
	return values, nil
}

// ModelInfo checks that the configured model is reachable.
func (g *GeminiEmbedder) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Provider: g.Name(), Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// BreakerStats exposes the embedding circuit breaker state.
func (g *GeminiEmbedder) BreakerStats() map[string]any {
	return g.breaker.Stats()
}

// executeWithRetry retries fn with exponential backoff and jitter
func (g *GeminiEmbedder) executeWithRetry(ctx context.Context, operation string, fn func() ([]float32, error)) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying embedding request",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Embedding request succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "Embedding request failed after all retry attempts",
		"operation", operation,
		"total_attempts", g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, g.config.MaxRetries, lastErr)
}

// backoff is 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s.
func backoff(attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitter := time.Duration(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(int64(float64(base)*0.1))); err == nil {
		jitter = time.Duration(n.Int64())
	}
	return min(base+jitter, 30*time.Second)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}
