// Copyright (c) 2026 OpenShelf. All rights reserved.

package catalog

import "context"

// # Catalog Data Access

// Repository defines the data access contract for books and memberships.
//
// FindBookByID must hydrate the full related graph (genre, memberships,
// authors, nationalities) because snapshots are taken from its result.
type Repository interface {

	/*
		ListBooks returns a filtered, paginated slice of hydrated books and
		the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (free-text query, genre, adapted flag)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Book: Slice of matching books
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	/*
		FindBookByID retrieves a book with its full related graph hydrated.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Book: Hydrated entity, Authors in ascending position order
		  - error: ErrNotFound if missing
	*/
	FindBookByID(context context.Context, id string) (*Book, error)

	/*
		CreateBook persists a new book and any pre-filled memberships in one
		transaction. Memberships with Position 0 are renumbered sequentially.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: ErrDuplicate on identifier collisions
	*/
	CreateBook(context context.Context, book *Book) error

	/*
		UpdateBook overwrites a book's scalar fields. The identifier column is
		not touched; use SetISBN.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: ErrNotFound if the row is missing
	*/
	UpdateBook(context context.Context, book *Book) error

	/*
		SetISBN assigns the identifier column. The column carries a unique
		constraint; a violation surfaces as ErrDuplicate, which the service
		treats as "regenerate from scratch".

		Parameters:
		  - context: context.Context
		  - bookID: string
		  - isbn: string (13 digits)

		Returns:
		  - error: ErrDuplicate when another book already holds the identifier
	*/
	SetISBN(context context.Context, bookID, isbn string) error

	/*
		ISBNExists reports whether an identifier has already been committed.
		This is the generator's uniqueness oracle.

		Parameters:
		  - context: context.Context
		  - candidate: string (13 digits)

		Returns:
		  - bool: true when a book already holds the candidate
		  - error: Database retrieval failures
	*/
	ISBNExists(context context.Context, candidate string) (bool, error)

	// # Membership Management

	/*
		AddAuthor links an author to a book. A zero Position is auto-assigned
		as max(position)+1 (1 for the first membership) within a transaction
		scope keyed by the book.

		Parameters:
		  - context: context.Context
		  - membership: *BookAuthor

		Returns:
		  - error: ErrDuplicate when the (book, author) pair exists
	*/
	AddAuthor(context context.Context, membership *BookAuthor) error

	/*
		SetAuthors replaces a book's membership set wholesale, renumbering
		positions 1..n in the given order.

		Parameters:
		  - context: context.Context
		  - bookID: string
		  - memberships: []BookAuthor

		Returns:
		  - error: Persistence failures
	*/
	SetAuthors(context context.Context, bookID string, memberships []BookAuthor) error

	/*
		RemoveAuthor detaches an author from a book.

		Parameters:
		  - context: context.Context
		  - bookID: string
		  - authorID: string

		Returns:
		  - error: ErrNotFound when the pair is missing
	*/
	RemoveAuthor(context context.Context, bookID, authorID string) error
}
