// Copyright (c) 2026 OpenShelf. All rights reserved.

package reference

import "context"

// # Reference Data Access

// Repository defines the data access contract for master data rows.
type Repository interface {

	// # Nationalities

	/*
		ListNationalities returns all nationality rows ordered by name.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Nationality: All nationality rows
		  - error: Database retrieval failures
	*/
	ListNationalities(context context.Context) ([]*Nationality, error)

	/*
		FindNationalityByID retrieves a nationality by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Nationality: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindNationalityByID(context context.Context, id string) (*Nationality, error)

	/*
		CreateNationality persists a new nationality row.

		Parameters:
		  - context: context.Context
		  - nationality: *Nationality

		Returns:
		  - error: ErrDuplicate on name or code collisions
	*/
	CreateNationality(context context.Context, nationality *Nationality) error

	// # Genres

	/*
		ListGenres returns all genre rows ordered by name.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Genre: All genre rows
		  - error: Database retrieval failures
	*/
	ListGenres(context context.Context) ([]*Genre, error)

	/*
		CreateGenre persists a new genre row.

		Parameters:
		  - context: context.Context
		  - genre: *Genre

		Returns:
		  - error: ErrDuplicate on name collisions
	*/
	CreateGenre(context context.Context, genre *Genre) error

	// # Authors

	/*
		ListAuthors returns all authors with nationality hydrated, ordered by last name.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Author: All contributors
		  - error: Database retrieval failures
	*/
	ListAuthors(context context.Context) ([]*Author, error)

	/*
		FindAuthorByID retrieves an author with nationality hydrated.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Author: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindAuthorByID(context context.Context, id string) (*Author, error)

	/*
		CreateAuthor persists a new contributor.

		Parameters:
		  - context: context.Context
		  - author: *Author

		Returns:
		  - error: ErrDuplicate on identity collisions
	*/
	CreateAuthor(context context.Context, author *Author) error

	/*
		UpdateAuthor modifies an existing contributor.

		Parameters:
		  - context: context.Context
		  - author: *Author

		Returns:
		  - error: ErrNotFound if the row is missing
	*/
	UpdateAuthor(context context.Context, author *Author) error

	/*
		AuthorIsPrimary reports whether the author is listed first on any book.

		Parameters:
		  - context: context.Context
		  - authorID: string (UUIDv7)

		Returns:
		  - bool: true when a position-1 membership exists
		  - error: Database retrieval failures
	*/
	AuthorIsPrimary(context context.Context, authorID string) (bool, error)
}
