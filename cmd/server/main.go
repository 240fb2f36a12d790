// Package main implements the entry point for the Lexical API server,
// which tracks per-word memory states for vocabulary learners, estimates
// their vocabulary rank, and reconciles on-device learning history with
// the server copy.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/tuluyhansozen/Lexical-sub002/internal/config"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires the application together, and serves
// until a shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	ctx := context.Background()

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
