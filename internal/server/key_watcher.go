package server

import (
	"fmt"
	"sync"
	"time"

	"atscore/internal/config"
	"atscore/internal/errors"
)

// secretSource reads versioned KVv2 secrets
type secretSource interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// APIKeyWatcher polls the Vault API key secret and hands new keys to the
// server whenever the secret version increases.
type APIKeyWatcher struct {
	mu sync.RWMutex

	client       secretSource
	secretPath   string
	pollInterval time.Duration
	onRotate     func(keys []string)
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	rotations   int
}

// NewAPIKeyWatcher creates a new APIKeyWatcher
func NewAPIKeyWatcher(client secretSource, secretPath string, pollInterval time.Duration, onRotate func([]string), logger *errors.Logger) *APIKeyWatcher {
	if logger == nil {
		logger = errors.Discard()
	}
	return &APIKeyWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onRotate:     onRotate,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start begins polling Vault
func (kw *APIKeyWatcher) Start() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if kw.running {
		return fmt.Errorf("api key watcher is already running")
	}
	kw.running = true
	go kw.pollLoop()
	kw.logger.Info("API key watcher started", "secret_path", kw.secretPath, "poll_interval", kw.pollInterval)
	return nil
}

// Stop stops polling
func (kw *APIKeyWatcher) Stop() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if !kw.running {
		return nil
	}
	close(kw.stopChan)
	kw.running = false
	kw.logger.Info("API key watcher stopped")
	return nil
}

func (kw *APIKeyWatcher) pollLoop() {
	ticker := time.NewTicker(kw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := kw.poll(); err != nil {
				kw.logger.LogError(err, "Failed to check Vault for API key updates")
			}
		case <-kw.stopChan:
			return
		}
	}
}

// poll reads the secret once and rotates keys if its version moved forward.
func (kw *APIKeyWatcher) poll() error {
	secret, err := kw.client.GetSecretV2(kw.secretPath)
	if err != nil {
		return fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		return fmt.Errorf("secret %s not found", kw.secretPath)
	}

	kw.mu.Lock()
	if secret.Version <= kw.lastVersion {
		kw.mu.Unlock()
		return nil
	}
	kw.lastVersion = secret.Version
	kw.rotations++
	kw.mu.Unlock()

	keys := secret.Strings("keys")
	kw.logger.Info("API keys rotated from Vault",
		"version", secret.Version,
		"key_count", len(keys))
	kw.onRotate(keys)
	return nil
}

// Status returns the watcher state for the stats endpoint
func (kw *APIKeyWatcher) Status() map[string]any {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	return map[string]any{
		"running":       kw.running,
		"poll_interval": kw.pollInterval.String(),
		"secret_path":   kw.secretPath,
		"last_version":  kw.lastVersion,
		"rotations":     kw.rotations,
	}
}
