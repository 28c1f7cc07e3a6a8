package config

import (
	"testing"

	"atscore/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSConfig(t *testing.T) {
	withFiles := func(mode string) TLSConfig {
		return TLSConfig{Mode: mode, CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem", CAFile: "/tls/ca.pem"}
	}

	tests := []struct {
		name    string
		tls     func() TLSConfig
		wantErr string
	}{
		{"disabled", func() TLSConfig { return TLSConfig{Mode: "disabled"} }, ""},
		{"server", func() TLSConfig { return withFiles("server") }, ""},
		{"mutual", func() TLSConfig { return withFiles("mutual") }, ""},
		{"server min 1.3", func() TLSConfig { c := withFiles("server"); c.MinVersion = "1.3"; return c }, ""},
		{"server missing key", func() TLSConfig { c := withFiles("server"); c.KeyFile = ""; return c },
			"TLS certificate and key files are required for server mode"},
		{"mutual missing CA", func() TLSConfig { c := withFiles("mutual"); c.CAFile = ""; return c },
			"CA certificate file is required"},
		{"mutual bad policy", func() TLSConfig { c := withFiles("mutual"); c.ClientAuthPolicy = "sometimes"; return c },
			"invalid clientAuthPolicy: sometimes"},
		{"unknown mode", func() TLSConfig { return TLSConfig{Mode: "invalid"} }, "invalid TLS mode: invalid"},
		{"old min version", func() TLSConfig { c := withFiles("server"); c.MinVersion = "1.1"; return c },
			"invalid TLS minVersion: 1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls()}}
			err := cfg.ValidateTLSConfig()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
		})
	}
}
