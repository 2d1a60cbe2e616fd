// Copyright (c) 2026 OpenShelf. All rights reserved.

// Package ctxkey defines typed context keys used across the catalog core.
//
// # Safety
//
// It is used to store and retrieve per-operation values (acting user, logger).
// Using a private, unexported type for keys prevents collisions with third-party
// packages that might also use context for storage.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
//
// # Collision Prevention
//
// Even if another package uses "actor" as a string key, it will not collide
// with this key type because Go's [context.Context] uses both the value AND
// the type for lookups.
type key string

const (
	// KeyActor is the context key for the acting user attributed in audit records.
	KeyActor key = "actor"

	// KeyLogger is the context key for the per-operation [*log/slog.Logger].
	KeyLogger key = "logger"
)
