// Copyright (c) 2026 OpenShelf. All rights reserved.

package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestAutoPositionStatements pins the shape of the auto-position SQL.

The writer lock must target the book row: a locking clause over the
membership rows locks nothing for a book that has no memberships yet, so
two concurrent first inserts could both compute position 1. The aggregate
itself must carry no locking clause at all, since Postgres rejects
FOR UPDATE combined with an aggregate function (SQLSTATE 0A000).
*/
func TestAutoPositionStatements(t *testing.T) {
	t.Run("lock targets the parent book row", func(t *testing.T) {
		lock := bookLockQuery()

		assert.Contains(t, lock, "FROM catalog.book ")
		assert.Contains(t, lock, "FOR UPDATE")
		assert.NotContains(t, lock, "catalog.bookauthor")
	})

	t.Run("aggregate carries no locking clause", func(t *testing.T) {
		next := nextPositionQuery()

		assert.Contains(t, next, "COALESCE(MAX(position), 0) + 1")
		assert.Contains(t, next, "FROM catalog.bookauthor")
		assert.Contains(t, next, "WHERE bookid = $1")
		assert.False(t, strings.Contains(next, "FOR UPDATE"),
			"aggregate query must not lock: %s", next)
	})
}
