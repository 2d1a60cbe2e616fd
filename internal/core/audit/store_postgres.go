// Copyright (c) 2026 OpenShelf. All rights reserved.

package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/internal/platform/database/schema"
	"github.com/openshelf/openshelf/internal/platform/dberr"
)

// # PostgreSQL Recorder

// auditRepository implements [Repository] using pgx.
type auditRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed audit log store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &auditRepository{pool: pool}
}

/*
Record appends one audit log entry.

Description: The change-set is serialized into a JSONB column so that
individual field transitions stay queryable with Postgres JSON operators.
Entries are append-only; no update or delete statement exists for this
table.

Parameters:
  - ctx: context.Context bounding the round-trip.
  - rec: *Record fully populated by the orchestration layer.

Returns:
  - error: dberr-classified write failures.
*/
func (repository *auditRepository) Record(ctx context.Context, rec *Record) error {

	// Serialize the field transitions for the JSONB column
	changes, err := json.Marshal(rec.Changes)
	if err != nil {
		return fmt.Errorf("audit: failed to encode changes: %w", err)
	}

	// Append-only insert
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		schema.SystemAuditLog.Table,
		schema.SystemAuditLog.ID,
		schema.SystemAuditLog.ActorID,
		schema.SystemAuditLog.Action,
		schema.SystemAuditLog.EntityType,
		schema.SystemAuditLog.EntityID,
		schema.SystemAuditLog.Label,
		schema.SystemAuditLog.Changes,
		schema.SystemAuditLog.CreatedAt,
	)

	_, err = repository.pool.Exec(ctx, query,
		rec.ID,
		rec.ActorID,
		rec.Action,
		rec.EntityType,
		rec.EntityID,
		rec.Label,
		changes,
		rec.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "record audit entry")
	}

	return nil
}

/*
ListByEntity returns the full audit trail of a single entity, newest first.
*/
func (repository *auditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*Record, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
		ORDER BY %s DESC
	`,
		schema.SystemAuditLog.ID,
		schema.SystemAuditLog.ActorID,
		schema.SystemAuditLog.Action,
		schema.SystemAuditLog.EntityType,
		schema.SystemAuditLog.EntityID,
		schema.SystemAuditLog.Label,
		schema.SystemAuditLog.Changes,
		schema.SystemAuditLog.CreatedAt,
		schema.SystemAuditLog.Table,
		schema.SystemAuditLog.EntityType,
		schema.SystemAuditLog.EntityID,
		schema.SystemAuditLog.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, dberr.Wrap(err, "list audit entries by entity")
	}
	defer rows.Close()

	return scanRecords(rows)
}

/*
ListRecent returns the most recent audit log entries across all entities.
*/
func (repository *auditRepository) ListRecent(ctx context.Context, limit int) ([]*Record, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s DESC
		LIMIT $1
	`,
		schema.SystemAuditLog.ID,
		schema.SystemAuditLog.ActorID,
		schema.SystemAuditLog.Action,
		schema.SystemAuditLog.EntityType,
		schema.SystemAuditLog.EntityID,
		schema.SystemAuditLog.Label,
		schema.SystemAuditLog.Changes,
		schema.SystemAuditLog.CreatedAt,
		schema.SystemAuditLog.Table,
		schema.SystemAuditLog.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list recent audit entries")
	}
	defer rows.Close()

	return scanRecords(rows)
}

// rowScanner is the subset of pgx.Rows needed for record hydration.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanRecords hydrates records from a result set, decoding the JSONB
// change-set column back into a [ChangeSet].
func scanRecords(rows rowScanner) ([]*Record, error) {
	var records []*Record

	for rows.Next() {
		var rec Record
		var rawChanges []byte

		err := rows.Scan(
			&rec.ID,
			&rec.ActorID,
			&rec.Action,
			&rec.EntityType,
			&rec.EntityID,
			&rec.Label,
			&rawChanges,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan audit record: %w", err)
		}

		if err := json.Unmarshal(rawChanges, &rec.Changes); err != nil {
			return nil, fmt.Errorf("audit: failed to decode changes: %w", err)
		}

		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate audit records: %w", err)
	}

	return records, nil
}
