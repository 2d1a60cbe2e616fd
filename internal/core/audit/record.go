// Copyright (c) 2026 OpenShelf. All rights reserved.

package audit

import (
	"context"
	"time"
)

// # Actions

// Action classifies what kind of mutation a record describes.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// # Records

// Record is one immutable audit log entry: a mutation of a single entity,
// attributed to an actor, with the field-level change-set that survives the
// diff.
type Record struct {
	ID         string
	EntityType string
	EntityID   string
	Label      string
	Action     Action
	Changes    ChangeSet
	ActorID    string
	CreatedAt  time.Time
}

// Recorder persists audit records.
//
// Implementations must treat records as append-only; there is no update or
// delete path by design of the audit trail.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
}

// Reader lists persisted audit records for inspection surfaces.
type Reader interface {
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*Record, error)
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}

// Repository is the full audit log contract: an append-only sink plus the
// read side for history views.
type Repository interface {
	Recorder
	Reader
}
