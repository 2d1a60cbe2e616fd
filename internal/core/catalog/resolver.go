// Copyright (c) 2026 OpenShelf. All rights reserved.

package catalog

import (
	"github.com/openshelf/openshelf/internal/core/isbn"
)

// # Primary Classification Resolution

// PrimaryClassificationCode resolves the normalized classification code that
// governs a book's identifier.
//
// The author at the lowest membership position is primary; if it carries a
// nationality, its code is normalized to 3 digits and returned. The boolean
// is false when the book has no memberships or the primary author carries no
// nationality code — callers must treat that as "use the sentinel" for
// assignment and as "no trigger" for regeneration. Deliberately narrow: a
// code on a non-primary author never governs the identifier.
func PrimaryClassificationCode(book *Book) (string, bool) {
	primary := book.PrimaryAuthor()
	if primary == nil {
		return "", false
	}

	code := primary.CountryCode()
	if code == "" {
		return "", false
	}

	return isbn.Normalize(code), true
}

// orderedMemberships returns the book's memberships sorted by ascending
// position without mutating the entity.
func orderedMemberships(book *Book) []BookAuthor {
	ordered := make([]BookAuthor, len(book.Authors))
	copy(ordered, book.Authors)

	// Insertion sort; membership lists are tiny
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Position < ordered[j-1].Position; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	return ordered
}
