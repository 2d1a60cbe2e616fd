// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
Package catalog manages book records and their ordered author memberships.

It owns the full lifecycle of a book: creation, scalar edits, author
membership edits, synchronous identifier assignment and the audited
regeneration of that identifier when the primary author's classification
code changes underneath it.

# Core Responsibility

  - Books: Defines the [Book] entity and its ordered [BookAuthor] relation.
  - Identity: Assigns and regenerates the book's ISBN-13 via the isbn package.
  - Auditing: Emits snapshot-diffed change records for every effective mutation.

The interplay between identity and auditing is the delicate part: an edit to
an unrelated field (author order, nationality) can change the identifier as
a side effect, and the audit trail must capture all affected fields in one
record.
*/
package catalog

import (
	"fmt"
	"time"

	"github.com/openshelf/openshelf/internal/core/reference"
)

// # Core Entities

// Book represents one catalog record.
//
// ISBN is absent until first successfully generated and is never cleared
// afterwards, only regenerated.
type Book struct {
	ID        string           `json:"id"` // UUIDv7
	Title     string           `json:"title"`
	GenreID   string           `json:"genre_id"`
	Genre     *reference.Genre `json:"genre,omitempty"` // Hydrated relation
	CoverKey  *string          `json:"cover_key,omitempty"`
	Adapted   bool             `json:"adapted"`
	FilmTitle *string          `json:"film_title,omitempty"`
	ISBN      *string          `json:"isbn,omitempty"`
	Authors   []BookAuthor     `json:"authors"` // Ascending position order
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// BookAuthor is the membership record linking a book to an author at a
// 1-based position. The author at position 1 is the primary author whose
// nationality code governs the book's identifier.
type BookAuthor struct {
	BookID   string            `json:"book_id"`
	AuthorID string            `json:"author_id"`
	Position int               `json:"position"`
	Author   *reference.Author `json:"author,omitempty"` // Hydrated relation
}

// Label renders the book for audit records and log lines as "Title (isbn)".
func (b *Book) Label() string {
	assigned := ""
	if b.ISBN != nil {
		assigned = *b.ISBN
	}
	return fmt.Sprintf("%s (%s)", b.Title, assigned)
}

// PrimaryAuthor returns the hydrated author at the lowest position, or nil
// when the book has no memberships.
func (b *Book) PrimaryAuthor() *reference.Author {
	if len(b.Authors) == 0 {
		return nil
	}
	primary := b.Authors[0]
	for _, membership := range b.Authors[1:] {
		if membership.Position < primary.Position {
			primary = membership
		}
	}
	return primary.Author
}

// # Search & Filtering

// Filter holds parameters for searching and listing books.
type Filter struct {
	Query         string `json:"q"` // Matches title, isbn and author names
	GenreID       string `json:"genre_id"`
	Adapted       *bool  `json:"adapted"`
	NationalityID string `json:"nationality_id"` // Books with at least one author of this nationality
}

// # Field Identifiers

// Audit snapshot field names, in snapshot order.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldGenre     = "genre"
	FieldCover     = "cover"
	FieldAdapted   = "adapted"
	FieldFilmTitle = "film_title"
	FieldISBN      = "isbn"
	FieldAuthors   = "authors"
)

// EntityType identifies book records in the audit log.
const EntityType = "catalog.book"
