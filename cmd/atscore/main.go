package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"atscore/internal/cli"
	"atscore/internal/config"
	"atscore/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "atscore: configuration:", err)
		return 1
	}
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "atscore: logger:", err)
		return 1
	}

	// Vault secrets override file and environment values.
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "vault secrets unavailable")
		return 1
	}

	logger.Debug("atscore starting", "version", cli.Version, "embedding_provider", cfg.Semantic.Provider)
	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "command failed")
		return 1
	}
	return 0
}
