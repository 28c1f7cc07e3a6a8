package config

import (
	"os"
	"path/filepath"
	"testing"

	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, "app:\n  logLevel: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, types.CompositionWeights{Semantic: 0.5, Keyword: 0.5}, cfg.Scoring.Composition)
	assert.Equal(t, types.DefaultReadinessWeights(), cfg.Scoring.Readiness)
	assert.Equal(t, ProviderHashing, cfg.Semantic.Provider)
	assert.Equal(t, 384, cfg.Semantic.Dimensions)
	assert.Equal(t, "golem", cfg.Scoring.Lemmatizer)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, `
scoring:
  composition:
    semantic: 0.7
    keyword: 0.3
  vocabulary:
    skills: [python, sql]
server:
  port: "9000"
  apiKeys: ["a", "b"]
`))
	require.NoError(t, err)

	assert.InDelta(t, 0.7, cfg.Scoring.Composition.Semantic, 1e-9)
	assert.Equal(t, []string{"python", "sql"}, cfg.Scoring.Vocabulary.Skills)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"a", "b"}, cfg.Server.APIKeys)
}

func TestLoadConfigFileEnvironment(t *testing.T) {
	t.Setenv("ATSCORE_SERVER_PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg, err := LoadConfigFile(writeConfig(t, "semantic:\n  provider: gemini\n"))
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "env-gemini-key", cfg.Semantic.APIKey)
}

func TestLoadConfigFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"negative weight", "scoring:\n  readiness:\n    skill: -1\n", "readiness weights"},
		{"unknown provider", "semantic:\n  provider: word2vec\n", "unsupported semantic provider"},
		{"unknown lemmatizer", "scoring:\n  lemmatizer: porter\n", "unsupported lemmatizer"},
		{"bad log level", "app:\n  logLevel: loud\n", "invalid log level"},
		{"watch without file", "scoring:\n  vocabulary:\n    watch: true\n", "vocabulary watch requires"},
		{"bad default format", "app:\n  defaultFormat: yaml\n", "invalid default format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateSemanticGeminiNeedsKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := &Config{Semantic: SemanticConfig{Provider: ProviderGemini, Model: "text-embedding-004"}}
	err := cfg.ValidateSemantic()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestApplyServerAPIKeyFallbacks(t *testing.T) {
	cfg := &Config{Server: ServerConfig{APIKeys: []string{"k1, k2 ,k3"}}}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"k1", "k2", "k3"}, cfg.Server.APIKeys)

	t.Setenv("ATSCORE_SERVER_APIKEYS", "x,y")
	empty := &Config{}
	empty.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"x", "y"}, empty.Server.APIKeys)
}
