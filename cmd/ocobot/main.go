// Command ocobot is the entry point for the Binance OCO trading bot. It loads
// configuration, validates it, wires dependencies, sets up signal handling, and
// starts the application in the configured mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/app"
	"github.com/alanyoungcy/ocobot/internal/config"
	"github.com/alanyoungcy/ocobot/internal/crypto"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	encryptOut := flag.String("encrypt-secret", "", "encrypt the API secret from OCOBOT_SECRET_PLAINTEXT to this path and exit")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *encryptOut != "" {
		if err := encryptSecret(*encryptOut); err != nil {
			logger.Error("failed to encrypt secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("encrypted secret written", slog.String("path", *encryptOut))
		return
	}

	os.Exit(run(*configPath, logger))
}

func run(configPath string, logger *slog.Logger) int {
	// Load configuration.
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", configPath),
			slog.String("error", err.Error()),
		)
		return 1
	}

	// Set log level from config.
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("ocobot starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", configPath),
	)
	logger.Debug("effective configuration", slog.Any("config", config.RedactedConfig(cfg)))

	application := app.New(cfg, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		switch {
		case errors.Is(err, action.ErrExit):
			logger.Info("bot stopped by exit action")
		case errors.Is(err, context.Canceled):
			logger.Info("application shut down gracefully")
		default:
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 1
		}
	}

	logger.Info("ocobot stopped")
	return 0
}

// parseLevel maps a configured log level to slog, defaulting to info.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// encryptSecret writes the API secret, encrypted with the configured
// password, to path. Both values come from the environment so they never
// appear in shell history.
func encryptSecret(path string) error {
	secret := os.Getenv("OCOBOT_SECRET_PLAINTEXT")
	password := os.Getenv("OCOBOT_BINANCE_SECRET_PASSWORD")
	if secret == "" || password == "" {
		return errors.New("OCOBOT_SECRET_PLAINTEXT and OCOBOT_BINANCE_SECRET_PASSWORD must be set")
	}
	blob, err := crypto.EncryptSecret(secret, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
