package config

import (
	"fmt"
	"slices"

	"atscore/internal/errors"
)

var (
	tlsModes          = []string{"disabled", "server", "mutual"}
	clientAuthChoices = []string{"", "require", "request", "verify"}
	tlsMinVersions    = []string{"", "1.2", "1.3"}
)

// ValidateTLSConfig checks the server TLS block before anything is loaded
// from disk. Failures are INVALID_CONFIG errors.
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS
	invalid := func(format string, args ...any) error {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf(format, args...), nil).
			WithContext("tls_mode", t.Mode)
	}

	if !slices.Contains(tlsModes, t.Mode) {
		return invalid("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", t.Mode)
	}
	if t.Mode == "disabled" {
		return nil
	}

	if t.CertFile == "" || t.KeyFile == "" {
		return invalid("TLS certificate and key files are required for %s mode", t.Mode)
	}
	if t.Mode == "mutual" {
		if t.CAFile == "" {
			return invalid("CA certificate file is required for mutual TLS mode")
		}
		if !slices.Contains(clientAuthChoices, t.ClientAuthPolicy) {
			return invalid("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", t.ClientAuthPolicy)
		}
	}
	if !slices.Contains(tlsMinVersions, t.MinVersion) {
		return invalid("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}
	return nil
}
