package config

import (
	"fmt"
	"os"
)

// Embedding providers
const (
	ProviderGemini  = "gemini"
	ProviderHashing = "hashing"
)

// ValidateSemantic checks the embedding provider settings.
func (c *Config) ValidateSemantic() error {
	s := c.Semantic
	switch s.Provider {
	case ProviderHashing:
		if s.Dimensions <= 0 {
			return fmt.Errorf("hashing provider needs positive dimensions, got %d", s.Dimensions)
		}
	case ProviderGemini:
		if s.APIKey == "" {
			return fmt.Errorf("semantic API key is required for the gemini provider (set %s_SEMANTIC_APIKEY or GEMINI_API_KEY)", envPrefix)
		}
		if s.Model == "" {
			return fmt.Errorf("semantic model is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unsupported semantic provider: %s", s.Provider)
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("semantic timeout must be positive")
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("semantic maxRetries must not be negative")
	}
	cb := s.CircuitBreaker
	if cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("circuit breaker failureThreshold must be in (0, 1], got %v", cb.FailureThreshold)
	}
	return nil
}

// applySemanticKeyFallback accepts the conventional GEMINI_API_KEY variable.
func (c *Config) applySemanticKeyFallback() {
	if c.Semantic.APIKey == "" {
		c.Semantic.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}
