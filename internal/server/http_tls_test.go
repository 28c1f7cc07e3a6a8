package server

import (
	"bytes"
	"crypto/tls"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"atscore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAuthPolicy(t *testing.T) {
	tests := []struct {
		policy string
		want   tls.ClientAuthType
	}{
		{"request", tls.RequestClientCert},
		{"verify", tls.VerifyClientCertIfGiven},
		{"require", tls.RequireAndVerifyClientCert},
		{"", tls.RequireAndVerifyClientCert},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clientAuthPolicy(tt.policy), tt.policy)
	}
}

func TestBuildTLSConfigErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.pem")

	tests := []struct {
		name string
		cfg  config.TLSConfig
		want string
	}{
		{"no files", config.TLSConfig{Mode: "server"}, "certificate and key files are required"},
		{"unreadable pair", config.TLSConfig{Mode: "server", CertFile: missing, KeyFile: missing}, "failed to load server cert/key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTLSConfig(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadCAPool(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(bogus, []byte("not a certificate"), 0o600))

	_, err := loadCAPool("")
	assert.ErrorContains(t, err, "required for mutual TLS")

	_, err = loadCAPool(filepath.Join(dir, "absent.pem"))
	assert.ErrorContains(t, err, "failed to read CA file")

	_, err = loadCAPool(bogus)
	assert.ErrorContains(t, err, "no certificates found")
}

func TestConfigureTLSModes(t *testing.T) {
	s, _ := newTestServer(t)

	s.TLSConfig = config.TLSConfig{Mode: "disabled"}
	hs := &http.Server{Addr: "127.0.0.1:0"}
	require.NoError(t, s.configureTLS(hs))
	assert.Nil(t, hs.TLSConfig)

	s.TLSConfig = config.TLSConfig{Mode: "bogus"}
	assert.ErrorContains(t, s.configureTLS(hs), "invalid TLS mode")
}

func TestWriteServerInfo(t *testing.T) {
	s, _ := newTestServer(t, "k1", "k2")
	s.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 5, ByIP: true}

	var buf bytes.Buffer
	s.writeServerInfo(&buf)
	out := buf.String()

	assert.Contains(t, out, "/analyze")
	assert.Contains(t, out, "/report")
	assert.Contains(t, out, "Auth: 2 API key(s)")
	assert.Contains(t, out, "Max request body: 1.0 MB")
	assert.Contains(t, out, "60 req/min, burst 5, keyed by IP")
}

func TestRateLimitScope(t *testing.T) {
	assert.Equal(t, "API key, then IP", rateLimitScope(true, true))
	assert.Equal(t, "IP", rateLimitScope(false, true))
	assert.Contains(t, rateLimitScope(false, false), "no requests")
}
