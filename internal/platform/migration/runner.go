// Copyright (c) 2026 OpenShelf. All rights reserved.

// Package migration runs the SQL schema migrations with golang-migrate.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. The catalog refuses to
// issue identifiers against a half-migrated registry, so migrations are
// applied to completion (or confirmed current) before any pool is handed to
// the services.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies every pending UP migration in order.
//
// A dirty version is refused outright: a previous run died mid-migration and
// the registry needs a manual decision (force or fix) before anything else
// touches it.
//
// # Parameters
//   - dsn: A libpq-compatible DSN or postgres:// URL.
//   - migrationsPath: Filesystem path to the migrations directory.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: init: %w", err)
	}
	defer closeMigrator(migrator, logger)

	migrator.Log = &slogBridge{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: read version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: dirty at version %d, resolve manually before retrying", version)
	}

	logger.Info("migration_started", slog.Int("current_version", int(version)))

	switch err := migrator.Up(); {
	case err == nil:
		applied, _, _ := migrator.Version()
		logger.Info("migration_applied",
			slog.Int("from_version", int(version)),
			slog.Int("to_version", int(applied)),
		)
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("migration_current")
		return nil
	default:
		return fmt.Errorf("migration: up: %w", err)
	}
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, dbErr := migrator.Close()
	if sourceErr != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
	}
	if dbErr != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbErr))
	}
}

// pgx5URL rewrites a postgres DSN onto the pgx5:// scheme golang-migrate's
// pgx/v5 driver registers under.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// slogBridge adapts golang-migrate's logger interface to slog.
type slogBridge struct {
	logger  *slog.Logger
	verbose bool
}

func (b *slogBridge) Printf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}

func (b *slogBridge) Verbose() bool {
	return b.verbose
}
