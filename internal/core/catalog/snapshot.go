// Copyright (c) 2026 OpenShelf. All rights reserved.

package catalog

import (
	"strings"

	"github.com/openshelf/openshelf/internal/core/audit"
)

// # Entity Snapshotting

// Snapshot flattens a hydrated book into the comparable point-in-time view
// the diff engine operates on.
//
// Scalar fields are copied verbatim; related references collapse to their
// display name; the ordered author relation collapses to one deterministic
// string (display names joined by ", " in ascending position), or null when
// the book has no authors. The cover field stores only the asset key, never
// bytes. Empty optional strings normalize to null so "cleared" and "never
// set" compare equal.
//
// Two snapshots of an unchanged book are field-for-field equal; re-ordering
// authors without changing membership changes the authors string.
func Snapshot(book *Book) *audit.Snapshot {
	snapshot := audit.NewSnapshot()

	genre := audit.Null()
	if book.Genre != nil {
		genre = audit.String(book.Genre.DisplayName())
	}

	snapshot.Set(FieldID, audit.String(book.ID))
	snapshot.Set(FieldTitle, audit.String(book.Title))
	snapshot.Set(FieldGenre, genre)
	snapshot.Set(FieldCover, optionalString(book.CoverKey))
	snapshot.Set(FieldAdapted, audit.Bool(book.Adapted))
	snapshot.Set(FieldFilmTitle, optionalString(book.FilmTitle))
	snapshot.Set(FieldISBN, optionalString(book.ISBN))
	snapshot.Set(FieldAuthors, authorsDisplay(book))

	return snapshot
}

// authorsDisplay joins author display names in ascending position order.
func authorsDisplay(book *Book) audit.Value {
	if len(book.Authors) == 0 {
		return audit.Null()
	}

	names := make([]string, 0, len(book.Authors))
	for _, membership := range orderedMemberships(book) {
		if membership.Author != nil {
			names = append(names, membership.Author.DisplayName())
		}
	}
	if len(names) == 0 {
		return audit.Null()
	}

	return audit.String(strings.Join(names, ", "))
}

// optionalString renders an optional scalar, treating empty as absent.
func optionalString(p *string) audit.Value {
	if p == nil || *p == "" {
		return audit.Null()
	}
	return audit.String(*p)
}
