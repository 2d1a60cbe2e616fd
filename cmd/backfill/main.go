// Copyright (c) 2026 OpenShelf. All rights reserved.

// Command backfill assigns identifiers to books that missed synchronous
// assignment (created before any author was attached) and exits.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured (candidate reservation).
//  5. Walk the catalog and run the identifier rule per book.
//
// Every assignment is written through the normal audit pipeline and
// attributed to the system actor.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/openshelf/openshelf/internal/core/audit"
	"github.com/openshelf/openshelf/internal/core/catalog"
	"github.com/openshelf/openshelf/internal/core/isbn"
	"github.com/openshelf/openshelf/internal/platform/config"
	"github.com/openshelf/openshelf/internal/platform/constants"
	pgstore "github.com/openshelf/openshelf/internal/platform/postgres"
	redisstore "github.com/openshelf/openshelf/internal/platform/redis"
)

const pageSize = 200

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("backfill_starting")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	repo := catalog.NewRepository(pool)
	auditlog := audit.NewRepository(pool)

	// ── 4. Uniqueness oracle, optionally reservation-decorated ────────────
	var oracle isbn.Oracle = isbn.OracleFunc(repo.ISBNExists)

	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer client.Close()

		oracle = isbn.NewReservingOracle(oracle, client, constants.DefaultISBNReserveTTL)
		log.Info("candidate_reservation_enabled")
	}

	generator := isbn.NewGenerator(oracle, isbn.WithMaxTries(cfg.ISBNMaxTries))
	service := catalog.NewService(repo, auditlog, generator, log)

	// ── 5. Walk the catalog ───────────────────────────────────────────────
	ctx := context.Background()
	assigned, scanned := 0, 0

	for offset := 0; ; offset += pageSize {
		books, total, err := service.ListBooks(ctx, catalog.Filter{}, pageSize, offset)
		must(log, err, "list books")

		for _, book := range books {
			scanned++

			changed, err := service.EnsureIdentifier(ctx, book.ID)
			if err != nil {
				log.Error("backfill_book_failed",
					slog.String("book_id", book.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			if changed {
				assigned++
			}
		}

		if offset+pageSize >= total || len(books) == 0 {
			break
		}
	}

	log.Info("backfill_finished",
		slog.Int("scanned", scanned),
		slog.Int("assigned", assigned),
	)
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
