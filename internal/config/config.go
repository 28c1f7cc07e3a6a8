package config

import (
	stderrors "errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"atscore/internal/types"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override, e.g. ATSCORE_SEMANTIC_APIKEY.
const envPrefix = "ATSCORE"

// Config holds all application configuration
// Secret precedence order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (ATSCORE_SEMANTIC_APIKEY, etc.), including a .env file
// 4. Default values - Lowest priority
type Config struct {
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Semantic      SemanticConfig      `mapstructure:"semantic"`
	Document      DocumentConfig      `mapstructure:"document"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ScoringConfig holds the static inputs of the scoring engine
type ScoringConfig struct {
	Composition types.CompositionWeights `mapstructure:"composition"`
	Readiness   types.WeightVector       `mapstructure:"readiness"`
	Vocabulary  VocabularyConfig         `mapstructure:"vocabulary"`
	Lemmatizer  string                   `mapstructure:"lemmatizer"` // golem or none
	Stopwords   string                   `mapstructure:"stopwords"`  // english
}

// VocabularyConfig says where the skill vocabulary comes from
type VocabularyConfig struct {
	File          string        `mapstructure:"file"`   // YAML vocabulary file; empty uses the bundled list
	Skills        []string      `mapstructure:"skills"` // Inline terms, used when no file is set
	Watch         bool          `mapstructure:"watch"`  // Reload the file on change while serving
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// SemanticConfig holds the embedding provider configuration
type SemanticConfig struct {
	Provider       string               `mapstructure:"provider"` // gemini or hashing
	Model          string               `mapstructure:"model"`
	APIKey         string               `mapstructure:"apiKey"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxRetries     int                  `mapstructure:"maxRetries"`
	Dimensions     int                  `mapstructure:"dimensions"`
	TaskType       string               `mapstructure:"taskType"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// DocumentConfig holds settings for reading résumés and job descriptions
type DocumentConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

// S3Config configures s3:// document sources. Endpoint allows R2 or MinIO.
type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	UsePathStyle    bool   `mapstructure:"usePathStyle"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode             string `mapstructure:"mode"`     // TLS mode: "disabled", "server", "mutual"
	CertFile         string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile          string `mapstructure:"keyFile"`  // Server private key file (PEM)
	CAFile           string `mapstructure:"caFile"`   // CA for client cert verification (PEM, mutual mode)
	MinVersion       string `mapstructure:"minVersion"`
	ClientAuthPolicy string `mapstructure:"clientAuthPolicy"` // require, request, verify
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// CustomMetricsConfig toggles the application metric groups
type CustomMetricsConfig struct {
	Analysis       bool `mapstructure:"analysis"`       // analyses, durations, degradations
	Embedding      bool `mapstructure:"embedding"`      // embedding requests and errors
	Infrastructure bool `mapstructure:"infrastructure"` // rate limits, vocabulary reloads
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout               time.Duration `mapstructure:"timeout"`
	EmbeddingCheckTimeout time.Duration `mapstructure:"embeddingCheckTimeout"`
}

// LoadConfig builds the configuration from defaults, an optional config.yaml
// in /etc/atscore, $HOME/.atscore or the working directory, a .env file and
// ATSCORE_* environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("[CONFIG] loaded .env")
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range []string{"/etc/atscore/", "$HOME/.atscore", "."} {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadConfigFile reads path instead of searching for config.yaml.
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyFallbacks()
	cfg.logConfigurationSources(v.ConfigFileUsed())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the whole configuration, section by section.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.App.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}
	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app.maxFileSize must be positive")
	}

	sections := []struct {
		name  string
		check func() error
	}{
		{"scoring", c.ValidateScoring},
		{"semantic", c.ValidateSemantic},
		{"TLS", c.ValidateTLSConfig},
	}
	for _, sec := range sections {
		if err := sec.check(); err != nil {
			return fmt.Errorf("%s configuration error: %w", sec.name, err)
		}
	}
	return nil
}

// ValidateScoring checks weights and lexical resources.
func (c *Config) ValidateScoring() error {
	comp := c.Scoring.Composition
	if err := (types.WeightVector{Semantic: comp.Semantic, Keyword: comp.Keyword}).Validate(); err != nil {
		return fmt.Errorf("composition weights: %w", err)
	}
	if err := c.Scoring.Readiness.Validate(); err != nil {
		return fmt.Errorf("readiness weights: %w", err)
	}
	switch c.Scoring.Lemmatizer {
	case "golem", "none":
	default:
		return fmt.Errorf("unsupported lemmatizer: %s", c.Scoring.Lemmatizer)
	}
	if c.Scoring.Stopwords != "english" {
		return fmt.Errorf("unsupported stopword set: %s", c.Scoring.Stopwords)
	}
	if c.Scoring.Vocabulary.Watch && c.Scoring.Vocabulary.File == "" {
		return fmt.Errorf("vocabulary watch requires scoring.vocabulary.file")
	}
	return nil
}
