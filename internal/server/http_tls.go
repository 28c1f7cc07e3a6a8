package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"atscore/internal/config"
)

// configureTLS attaches a tls.Config to httpServer unless TLS is disabled.
func (s *Server) configureTLS(httpServer *http.Server) error {
	mode := s.TLSConfig.Mode
	switch mode {
	case "", "disabled":
		fmt.Printf("Listening on http://%s (TLS disabled)\n", httpServer.Addr)
		return nil
	case "server", "mutual":
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", mode)
	}

	tc, err := buildTLSConfig(s.TLSConfig)
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tc
	fmt.Printf("Listening on https://%s (TLS mode: %s)\n", httpServer.Addr, mode)
	return nil
}

// buildTLSConfig loads the key pair and, in mutual mode, the client CA pool.
func buildTLSConfig(c config.TLSConfig) (*tls.Config, error) {
	if c.CertFile == "" || c.KeyFile == "" {
		return nil, fmt.Errorf("TLS certificate and key files are required")
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server cert/key from files: %w", err)
	}

	tc := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		ClientAuth:   tls.NoClientCert,
	}
	if c.MinVersion == "1.3" {
		tc.MinVersion = tls.VersionTLS13
	}
	if c.Mode != "mutual" {
		return tc, nil
	}

	pool, err := loadCAPool(c.CAFile)
	if err != nil {
		return nil, err
	}
	tc.ClientCAs = pool
	tc.ClientAuth = clientAuthPolicy(c.ClientAuthPolicy)
	return tc, nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, fmt.Errorf("CA certificate file is required for mutual TLS mode")
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in CA file %s", path)
	}
	return pool, nil
}

// clientAuthPolicy maps a policy name to a tls.ClientAuthType. Unknown
// names require and verify a client certificate.
func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
