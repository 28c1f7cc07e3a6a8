package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"atscore/internal/config"
	"atscore/internal/observability"
	"atscore/internal/scoring"

	"golang.org/x/sync/errgroup"
)

// Start runs the HTTP server until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)
	s.metrics = om.GetMetrics()

	if err := s.initializeEngine(); err != nil {
		return err
	}

	httpServer := s.setupHTTPServer(om)
	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	if err := s.startWatchers(); err != nil {
		return err
	}
	defer s.stopWatchers()

	s.displayServerInfo()

	return s.serve(ctx, httpServer)
}

func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	om, err := observability.NewObservabilityManager(observability.ConfigFrom(s.AppConfig, s.Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return om, nil
}

// shutdownObservability flushes exporters with a short deadline
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryFlush)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "telemetry flush failed")
	}
}

// initializeEngine builds the scoring engine unless one was injected
func (s *Server) initializeEngine() error {
	if s.Engine() != nil {
		return nil
	}

	var observer scoring.Observer
	if s.metrics != nil {
		observer = s.metrics
	}
	eng, err := scoring.BuildEngine(s.AppConfig, s.Logger, observer)
	if err != nil {
		return fmt.Errorf("failed to build scoring engine: %w", err)
	}
	s.SetEngine(eng)
	return nil
}

// startWatchers starts the vocabulary file watcher and the Vault API key
// watcher when they are configured
func (s *Server) startWatchers() error {
	vocab := s.AppConfig.Scoring.Vocabulary
	if vocab.Watch && vocab.File != "" {
		s.vocabWatcher = NewVocabularyWatcher(vocab.File, vocab.DebounceDelay, s.reloadVocabulary, s.Logger)
		if err := s.vocabWatcher.Start(); err != nil {
			return fmt.Errorf("failed to start vocabulary watcher: %w", err)
		}
	}

	vault := s.AppConfig.Vault
	if vault.Enabled && vault.PollInterval > 0 && vault.Secrets.APIKeys != "" {
		client, err := config.NewVaultClient(vault, s.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Vault client: %w", err)
		}
		if client != nil {
			s.keyWatcher = NewAPIKeyWatcher(client, vault.Secrets.APIKeys, vault.PollInterval, s.SetAPIKeys, s.Logger)
			if err := s.keyWatcher.Start(); err != nil {
				return fmt.Errorf("failed to start API key watcher: %w", err)
			}
		}
	}
	return nil
}

func (s *Server) stopWatchers() {
	var stops []func() error
	if s.vocabWatcher != nil {
		stops = append(stops, s.vocabWatcher.Stop)
	}
	if s.keyWatcher != nil {
		stops = append(stops, s.keyWatcher.Stop)
	}
	for _, stop := range stops {
		if err := stop(); err != nil {
			s.Logger.LogError(err, "watcher did not stop cleanly")
		}
	}
}

const (
	readHeaderTimeout = 10 * time.Second
	drainTimeout      = 30 * time.Second
	telemetryFlush    = 5 * time.Second
)

func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(s.Host, s.Port),
		Handler:           om.HTTPMiddleware()(s.setupRoutes(om)),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

// serve runs httpServer until ctx is cancelled, then drains in-flight
// requests. A listener failure cancels the drain goroutine and is returned.
func (s *Server) serve(ctx context.Context, httpServer *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tlsOn := httpServer.TLSConfig != nil
		s.Logger.Info("http server listening", "address", httpServer.Addr, "tls", tlsOn)
		var err error
		if tlsOn {
			// certificates are already in TLSConfig
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			return nil // listener failed, nothing to drain
		}
		return s.drain(httpServer)
	})

	return g.Wait()
}

func (s *Server) drain(httpServer *http.Server) error {
	s.Logger.Info("shutting down, draining connections", "timeout", drainTimeout)
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "graceful shutdown timed out, closing connections")
		return httpServer.Close()
	}
	s.Logger.Info("http server stopped")
	return nil
}
