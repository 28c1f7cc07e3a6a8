package cli

import (
	"fmt"

	"atscore/internal/config"
	"atscore/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP scoring API",
	Long: `Serve the scoring engine as a JSON API.

POST /analyze, /scores, /skills, /readiness and /report take a résumé and a
job description and require an API key when keys are configured. GET /health
and /stats are always open.

Flags below override the server and TLS settings from the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// serveOverrides binds each string flag to the config field it replaces.
var serveOverrides = []struct {
	name, short, usage string
	field              func(*config.Config) *string
}{
	{"port", "p", "port to listen on", func(c *config.Config) *string { return &c.Server.Port }},
	{"host", "", "address to bind", func(c *config.Config) *string { return &c.Server.Host }},
	{"tls-mode", "", "disabled, server or mutual", func(c *config.Config) *string { return &c.Server.TLS.Mode }},
	{"cert-file", "", "server certificate (PEM)", func(c *config.Config) *string { return &c.Server.TLS.CertFile }},
	{"key-file", "", "server private key (PEM)", func(c *config.Config) *string { return &c.Server.TLS.KeyFile }},
	{"ca-file", "", "CA bundle for client certificates (PEM, mutual mode)", func(c *config.Config) *string { return &c.Server.TLS.CAFile }},
}

func init() {
	for _, o := range serveOverrides {
		serveCmd.Flags().StringP(o.name, o.short, "", o.usage)
	}
}

func applyServeOverrides(cmd *cobra.Command, cfg *config.Config) error {
	for _, o := range serveOverrides {
		if !cmd.Flags().Changed(o.name) {
			continue
		}
		value, err := cmd.Flags().GetString(o.name)
		if err != nil {
			return err
		}
		*o.field(cfg) = value
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if err := applyServeOverrides(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	srv := server.NewServer(cfg, server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
	}, getLoggerFromContext(cmd.Context()))
	return srv.Start(cmd.Context())
}
