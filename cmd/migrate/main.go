// Copyright (c) 2026 OpenShelf. All rights reserved.

// Command migrate applies the catalog's SQL migrations and exits.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Verify PostgreSQL connectivity.
//  4. Run database migrations (idempotent).
//
// No business logic lives here.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/openshelf/openshelf/internal/platform/config"
	"github.com/openshelf/openshelf/internal/platform/constants"
	"github.com/openshelf/openshelf/internal/platform/migration"
	pgstore "github.com/openshelf/openshelf/internal/platform/postgres"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("migrator_starting")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("migration_path", cfg.MigrationPath),
	)

	// 30s deadline so misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	must(log, pgstore.Ping(startupCtx, pool), "ping postgres")

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	log.Info("migrator_finished")
}

// must logs a fatal startup error and exits.
func must(log *slog.Logger, err error, action string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
}
