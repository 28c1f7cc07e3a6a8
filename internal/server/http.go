package server

import (
	"sync/atomic"
	"time"

	"atscore/internal/config"
	atserrors "atscore/internal/errors"
	"atscore/internal/observability"
	"atscore/internal/report"
	"atscore/internal/scoring"

	"github.com/go-playground/validator/v10"
)

// Server exposes a scoring engine over HTTP. Fields are fixed after
// NewServer; the engine and API key set are swapped atomically while serving.
type Server struct {
	Host, Port, Version string
	AppConfig           *config.Config
	TLSConfig           config.TLSConfig

	ReadTimeout, WriteTimeout, IdleTimeout time.Duration
	MaxRequestSize                         int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter
	Logger      *atserrors.Logger

	apiKeys atomic.Pointer[keySet]
	engine  atomic.Pointer[scoring.Engine] // each request keeps the snapshot it loaded
	reloads atomic.Int64

	validate *validator.Validate
	reports  *report.Generator
	metrics  *observability.Metrics

	vocabWatcher *VocabularyWatcher
	keyWatcher   *APIKeyWatcher
}

type keySet map[string]struct{}

// ServerConfig is the subset of settings NewServer copies onto a Server
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance. The scoring engine is built on
// Start unless one is set with SetEngine first.
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *atserrors.Logger) *Server {
	if logger == nil {
		logger = atserrors.Discard()
	}

	var limiter *RateLimiter
	if rl := cfg.RateLimit; rl != nil && rl.Enabled {
		limiter = NewRateLimiter(rl.RequestsPerMin, rl.BurstCapacity, rl.Window, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    limiter,
		Logger:         logger,
		validate:       newValidator(),
		reports:        report.NewGenerator(),
	}
	s.SetAPIKeys(cfg.APIKeys)
	return s
}

// SetAPIKeys replaces the accepted API keys. Empty entries are ignored.
func (s *Server) SetAPIKeys(keys []string) {
	set := make(keySet, len(keys))
	for _, key := range keys {
		if key != "" {
			set[key] = struct{}{}
		}
	}
	s.apiKeys.Store(&set)
}

func (s *Server) hasAPIKeys() bool {
	return len(*s.apiKeys.Load()) > 0
}

func (s *Server) validAPIKey(key string) bool {
	_, ok := (*s.apiKeys.Load())[key]
	return ok
}

// SetEngine installs the scoring engine used by new requests.
func (s *Server) SetEngine(e *scoring.Engine) {
	s.engine.Store(e)
}

// Engine returns the current scoring engine snapshot.
func (s *Server) Engine() *scoring.Engine {
	return s.engine.Load()
}
