// Copyright (c) 2026 OpenShelf. All rights reserved.

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/openshelf/openshelf/internal/platform/ctxkey"
)

// SystemActor is attributed when no acting user is present in the context,
// e.g. for background regeneration jobs or migration tooling.
const SystemActor = "system"

// # Audit Attribution

// WithActor returns a new context with the acting user attached.
//
// The embedding application sets the actor once per unit of work; every audit
// record written within that scope is attributed to it.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyActor, actor)
}

// GetActor retrieves the acting user from the context.
// Returns [SystemActor] when no actor has been attached.
func GetActor(ctx context.Context) string {
	actor, ok := ctx.Value(ctxkey.KeyActor).(string)
	if !ok || actor == "" {
		return SystemActor
	}
	return actor
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}
