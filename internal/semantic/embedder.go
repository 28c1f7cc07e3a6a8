// Package semantic scores contextual similarity between a résumé and a job
// description by comparing sentence embeddings of the raw texts.
package semantic

import (
	"context"
	"fmt"

	"atscore/internal/config"
	"atscore/internal/errors"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// ModelInfo describes the embedding model for health checks
type ModelInfo struct {
	Provider    string `json:"provider"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// ModelInspector is implemented by embedders backed by a remote model.
type ModelInspector interface {
	ModelInfo(ctx context.Context) *ModelInfo
}

// NewEmbedder builds the embedder selected by cfg.Provider.
func NewEmbedder(cfg config.SemanticConfig, logger *errors.Logger) (Embedder, error) {
	logger.Debug("Initializing embedder",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	switch cfg.Provider {
	case config.ProviderHashing:
		return NewHashingEmbedder(cfg.Dimensions), nil
	case config.ProviderGemini:
		emb, err := NewGeminiEmbedder(cfg, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
				"Failed to create embedding provider", err)
		}
		return emb, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported embedding provider: %s", cfg.Provider), nil)
	}
}
