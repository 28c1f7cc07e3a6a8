package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"atscore/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// PollInterval re-reads the API key secret while serving; zero disables it
	PollInterval time.Duration `mapstructure:"pollInterval"`

	// Secret paths
	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault
type VaultSecrets struct {
	// APIKeys expects a single string with comma-separated values in Vault
	// Example format: "key1,key2,key3"
	// The first key will be used as the primary key, others as fallbacks
	APIKeys       string `mapstructure:"apiKeys"`       // Path to server API keys secret (key "keys")
	EmbeddingKey  string `mapstructure:"embeddingKey"`  // Path to embedding provider API key (key "api_key")
	S3Credentials string `mapstructure:"s3Credentials"` // Path to S3 credentials (keys "access_key_id", "secret_access_key")
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient connects to Vault and checks its health. It returns a nil
// client when Vault is disabled.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if !cfg.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "failed to connect to vault", err).
			WithContext("address", apiCfg.Address)
	}
	logger.Info("Connected to Vault",
		"address", apiCfg.Address,
		"namespace", cfg.Namespace,
		"version", health.Version,
		"sealed", health.Sealed,
		"token", MaskSecret(token))

	return &VaultClient{client: client, config: cfg, logger: logger}, nil
}

// resolveVaultToken takes the configured token, or the trimmed contents of
// the token file.
func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read vault token file", err).
				WithContext("file", cfg.TokenFile)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}
	return token, nil
}

// VaultSecret is one version of a KVv2 secret.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// String returns a string field of the secret.
func (s *VaultSecret) String(key string) (string, error) {
	value, ok := s.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret", key)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is %T, not a string", key, value)
	}
	return str, nil
}

// Strings reads key as a list. A comma-separated string and a JSON array are
// both accepted; blank entries are dropped.
func (s *VaultSecret) Strings(key string) []string {
	var out []string
	add := func(v string) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	switch v := s.Data[key].(type) {
	case string:
		for part := range strings.SplitSeq(v, ",") {
			add(part)
		}
	case []any:
		for _, item := range v {
			if str, ok := item.(string); ok {
				add(str)
			}
		}
	case []string:
		for _, str := range v {
			add(str)
		}
	}
	return out
}

// GetSecretV2 reads the latest version of a KVv2 secret. path includes the
// mount's "data/" segment.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	raw, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "failed to read secret", err).
			WithContext("path", path)
	}
	if raw == nil || raw.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	secret, err := decodeKV2(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("secret at %s: %w", path, err)
	}
	vc.logger.Debug("Secret read from Vault", "path", path, "version", secret.Version)
	return secret, nil
}

// decodeKV2 splits a KVv2 response body into its data and version.
func decodeKV2(body map[string]any) (*VaultSecret, error) {
	data, ok := body["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not in KVv2 format (missing 'data' field)")
	}
	metadata, ok := body["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not in KVv2 format (missing 'metadata' field)")
	}
	raw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("metadata is missing 'version' field")
	}
	version, err := parseVersionValue(raw)
	if err != nil {
		return nil, err
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue accepts the number encodings the Vault client produces.
func parseVersionValue(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Int64()
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version: %w", err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version: %T", raw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, err := secret.String(key)
	if err != nil {
		return "", fmt.Errorf("secret %s: %w", path, err)
	}
	return value, nil
}

// GetStringSliceSecret retrieves a list value from a Vault secret
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return nil, err
	}
	return secret.Strings(key), nil
}

// MaskSecret keeps the first and last four characters of long secrets.
func MaskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case len(value) > 0:
		return "****"
	}
	return ""
}

// secretReader is the part of VaultClient the loaders need.
type secretReader interface {
	GetStringSecret(path, key string) (string, error)
	GetStringSliceSecret(path, key string) ([]string, error)
}

// ApplyVaultSecrets overrides config values with the secrets configured
// under vault.secrets. It is a no-op when Vault is disabled.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if logger == nil {
		logger = errors.Discard()
	}
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if client == nil {
		return nil
	}
	return applySecrets(client, config, logger)
}

// applySecrets copies every configured secret into config. Empty secrets
// leave the existing value in place.
func applySecrets(client secretReader, config *Config, logger *errors.Logger) error {
	paths := config.Vault.Secrets

	if paths.APIKeys != "" {
		keys, err := client.GetStringSliceSecret(paths.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if len(keys) == 0 {
			logger.Warn("No API keys found in Vault", "path", paths.APIKeys)
		} else {
			config.Server.APIKeys = keys
			logger.Info("API keys loaded from Vault", "count", len(keys))
		}
	}

	if paths.EmbeddingKey != "" {
		key, err := client.GetStringSecret(paths.EmbeddingKey, "api_key")
		if err != nil {
			return fmt.Errorf("failed to load embedding API key from vault: %w", err)
		}
		if key == "" {
			logger.Warn("Empty embedding API key found in Vault", "path", paths.EmbeddingKey)
		} else {
			config.Semantic.APIKey = key
			logger.Info("Embedding API key loaded from Vault", "key", MaskSecret(key))
		}
	}

	if paths.S3Credentials != "" {
		var creds [2]string
		for i, key := range []string{"access_key_id", "secret_access_key"} {
			value, err := client.GetStringSecret(paths.S3Credentials, key)
			if err != nil {
				return fmt.Errorf("failed to load S3 credentials from vault: %w", err)
			}
			creds[i] = value
		}
		config.Document.S3.AccessKeyID = creds[0]
		config.Document.S3.SecretAccessKey = creds[1]
		logger.Info("S3 credentials loaded from Vault", "access_key_id", MaskSecret(creds[0]))
	}
	return nil
}
