// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
PostgreSQL implementation of the catalog repository.

It leans on a few Postgres features to keep the service layer simple:
  - Transactions: book + membership writes commit atomically.
  - Window Functions: total result counts without a separate COUNT query.
  - Unique Constraints: the isbn column enforces the reject-on-write rule the
    identifier assignment sequence depends on.
*/
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/internal/core/reference"
	"github.com/openshelf/openshelf/internal/platform/database/schema"
	"github.com/openshelf/openshelf/internal/platform/dberr"
)

// # PostgreSQL Repository

// bookRepository implements the [Repository] interface using pgx.
type bookRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed catalog store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &bookRepository{pool: pool}
}

// # Book Implementation

/*
ListBooks retrieves a filtered, paginated page of books.

Description: The free-text query matches title, isbn and author names. The
total count rides along via a window function; each page row is then
hydrated with its ordered author graph.
*/
func (repository *bookRepository) ListBooks(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT
			b.%s, b.%s, b.%s, g.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
			COUNT(*) OVER() AS total_count
		FROM %s b
		JOIN %s g ON b.%s = g.%s
		WHERE TRUE
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.GenreID, schema.RefGenre.Name,
		schema.CatalogBook.CoverKey, schema.CatalogBook.Adapted, schema.CatalogBook.FilmTitle,
		schema.CatalogBook.ISBN, schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.Table,
		schema.RefGenre.Table, schema.CatalogBook.GenreID, schema.RefGenre.ID,
	))

	// Free-text filter over title, isbn and author names
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(`
			AND (b.%s ILIKE $%d OR b.%s ILIKE $%d OR EXISTS (
				SELECT 1 FROM %s ba
				JOIN %s a ON ba.%s = a.%s
				WHERE ba.%s = b.%s
				  AND (a.%s || ' ' || a.%s) ILIKE $%d
			))
		`,
			schema.CatalogBook.Title, argID, schema.CatalogBook.ISBN, argID,
			schema.BookAuthor.Table,
			schema.RefAuthor.Table, schema.BookAuthor.AuthorID, schema.RefAuthor.ID,
			schema.BookAuthor.BookID, schema.CatalogBook.ID,
			schema.RefAuthor.FirstName, schema.RefAuthor.LastName, argID,
		))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.GenreID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CatalogBook.GenreID, argID))
		args = append(args, filter.GenreID)
		argID++
	}

	if filter.Adapted != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CatalogBook.Adapted, argID))
		args = append(args, *filter.Adapted)
		argID++
	}

	if filter.NationalityID != "" {
		queryBuilder.WriteString(fmt.Sprintf(`
			AND EXISTS (
				SELECT 1 FROM %s ba
				JOIN %s a ON ba.%s = a.%s
				WHERE ba.%s = b.%s AND a.%s = $%d
			)
		`,
			schema.BookAuthor.Table,
			schema.RefAuthor.Table, schema.BookAuthor.AuthorID, schema.RefAuthor.ID,
			schema.BookAuthor.BookID, schema.CatalogBook.ID,
			schema.RefAuthor.NationalityID, argID,
		))
		args = append(args, filter.NationalityID)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY b.%s ASC", schema.CatalogBook.Title))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list books")
	}
	defer rows.Close()

	var books []*Book
	var totalCount int

	for rows.Next() {
		var book Book
		var genreName string

		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.GenreID,
			&genreName,
			&book.CoverKey,
			&book.Adapted,
			&book.FilmTitle,
			&book.ISBN,
			&book.CreatedAt,
			&book.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan book: %w", err)
		}

		book.Genre = &reference.Genre{ID: book.GenreID, Name: genreName}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate books: %w", err)
	}

	// Hydrate ordered author graphs per page row
	for _, book := range books {
		authors, err := repository.listMemberships(ctx, book.ID)
		if err != nil {
			return nil, 0, err
		}
		book.Authors = authors
	}

	return books, totalCount, nil
}

/*
FindBookByID retrieves one book with its full related graph hydrated.
*/
func (repository *bookRepository) FindBookByID(ctx context.Context, id string) (*Book, error) {

	query := fmt.Sprintf(`
		SELECT
			b.%s, b.%s, b.%s, g.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s
		FROM %s b
		JOIN %s g ON b.%s = g.%s
		WHERE b.%s = $1
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.GenreID, schema.RefGenre.Name,
		schema.CatalogBook.CoverKey, schema.CatalogBook.Adapted, schema.CatalogBook.FilmTitle,
		schema.CatalogBook.ISBN, schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.Table,
		schema.RefGenre.Table, schema.CatalogBook.GenreID, schema.RefGenre.ID,
		schema.CatalogBook.ID,
	)

	var book Book
	var genreName string

	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.GenreID,
		&genreName,
		&book.CoverKey,
		&book.Adapted,
		&book.FilmTitle,
		&book.ISBN,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find book")
	}

	book.Genre = &reference.Genre{ID: book.GenreID, Name: genreName}

	authors, err := repository.listMemberships(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	book.Authors = authors

	return &book, nil
}

/*
CreateBook inserts a new book and its pre-filled memberships atomically.
*/
func (repository *bookRepository) CreateBook(ctx context.Context, book *Book) error {

	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin book creation")
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.GenreID,
		schema.CatalogBook.CoverKey, schema.CatalogBook.Adapted, schema.CatalogBook.FilmTitle,
		schema.CatalogBook.ISBN,
	)

	_, err = tx.Exec(ctx, query,
		book.ID,
		book.Title,
		book.GenreID,
		book.CoverKey,
		book.Adapted,
		book.FilmTitle,
		book.ISBN,
	)
	if err != nil {
		return dberr.Wrap(err, "create book")
	}

	// Pre-filled memberships, positions renumbered when unset
	for i, membership := range book.Authors {
		position := membership.Position
		if position == 0 {
			position = i + 1
		}
		if err := insertMembership(ctx, tx, book.ID, membership.AuthorID, position); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit book creation")
	}

	return nil
}

/*
UpdateBook overwrites a book's scalar fields, never its identifier.
*/
func (repository *bookRepository) UpdateBook(ctx context.Context, book *Book) error {

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $6
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.Title, schema.CatalogBook.GenreID, schema.CatalogBook.CoverKey,
		schema.CatalogBook.Adapted, schema.CatalogBook.FilmTitle, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.ID,
	)

	result, err := repository.pool.Exec(ctx, query,
		book.Title,
		book.GenreID,
		book.CoverKey,
		book.Adapted,
		book.FilmTitle,
		book.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update book")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
SetISBN assigns the identifier column under its unique constraint.
*/
func (repository *bookRepository) SetISBN(ctx context.Context, bookID, isbn string) error {

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.ISBN, schema.CatalogBook.UpdatedAt, schema.CatalogBook.ID,
	)

	result, err := repository.pool.Exec(ctx, query, isbn, bookID)
	if err != nil {
		return dberr.Wrap(err, "assign isbn")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
ISBNExists reports whether an identifier has already been committed.
*/
func (repository *bookRepository) ISBNExists(ctx context.Context, candidate string) (bool, error) {

	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)
	`,
		schema.CatalogBook.Table, schema.CatalogBook.ISBN,
	)

	var taken bool
	if err := repository.pool.QueryRow(ctx, query, candidate).Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "check isbn existence")
	}

	return taken, nil
}

// # Membership Implementation

/*
AddAuthor links an author to a book, auto-assigning the next position.

Description: The max(position)+1 computation and the insert run inside one
transaction that first locks the book row, so concurrent membership inserts
for the same book serialize instead of racing the read-then-write.
*/
func (repository *bookRepository) AddAuthor(ctx context.Context, membership *BookAuthor) error {

	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin membership insert")
	}
	defer tx.Rollback(ctx)

	position := membership.Position
	if position == 0 {
		var lockedID string
		if err := tx.QueryRow(ctx, bookLockQuery(), membership.BookID).Scan(&lockedID); err != nil {
			return dberr.Wrap(err, "lock book for membership insert")
		}

		if err := tx.QueryRow(ctx, nextPositionQuery(), membership.BookID).Scan(&position); err != nil {
			return dberr.Wrap(err, "compute membership position")
		}
	}

	if err := insertMembership(ctx, tx, membership.BookID, membership.AuthorID, position); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit membership insert")
	}

	membership.Position = position
	return repository.touch(ctx, membership.BookID)
}

// bookLockQuery serializes membership writers for one book on its parent
// row, which exists even while the book has no memberships to lock.
func bookLockQuery() string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CatalogBook.ID, schema.CatalogBook.Table, schema.CatalogBook.ID,
	)
}

// nextPositionQuery computes max(position)+1 for a book's memberships. It
// must carry no locking clause: Postgres rejects FOR UPDATE over an
// aggregate (SQLSTATE 0A000), and the caller already holds the book row.
func nextPositionQuery() string {
	return fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1`,
		schema.BookAuthor.Position, schema.BookAuthor.Table, schema.BookAuthor.BookID,
	)
}

/*
SetAuthors replaces a book's membership set, renumbering positions 1..n.
*/
func (repository *bookRepository) SetAuthors(ctx context.Context, bookID string, memberships []BookAuthor) error {

	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin membership replace")
	}
	defer tx.Rollback(ctx)

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.BookAuthor.Table, schema.BookAuthor.BookID)

	if _, err := tx.Exec(ctx, deleteQuery, bookID); err != nil {
		return dberr.Wrap(err, "clear memberships")
	}

	for i, membership := range memberships {
		if err := insertMembership(ctx, tx, bookID, membership.AuthorID, i+1); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit membership replace")
	}

	return repository.touch(ctx, bookID)
}

/*
RemoveAuthor detaches an author from a book.
*/
func (repository *bookRepository) RemoveAuthor(ctx context.Context, bookID, authorID string) error {

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.BookAuthor.Table, schema.BookAuthor.BookID, schema.BookAuthor.AuthorID)

	result, err := repository.pool.Exec(ctx, query, bookID, authorID)
	if err != nil {
		return dberr.Wrap(err, "remove membership")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return repository.touch(ctx, bookID)
}

// # Internals

// insertMembership writes one (book, author, position) row.
func insertMembership(ctx context.Context, tx pgx.Tx, bookID, authorID string, position int) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
	`,
		schema.BookAuthor.Table,
		schema.BookAuthor.BookID, schema.BookAuthor.AuthorID, schema.BookAuthor.Position,
	)

	if _, err := tx.Exec(ctx, query, bookID, authorID, position); err != nil {
		return dberr.Wrap(err, "insert membership")
	}
	return nil
}

// listMemberships hydrates a book's ordered author graph, including each
// author's optional nationality.
func (repository *bookRepository) listMemberships(ctx context.Context, bookID string) ([]BookAuthor, error) {

	query := fmt.Sprintf(`
		SELECT
			ba.%s, ba.%s, ba.%s,
			a.%s, a.%s, a.%s, a.%s, a.%s,
			n.%s, n.%s, n.%s
		FROM %s ba
		JOIN %s a ON ba.%s = a.%s
		LEFT JOIN %s n ON a.%s = n.%s
		WHERE ba.%s = $1
		ORDER BY ba.%s ASC
	`,
		schema.BookAuthor.BookID, schema.BookAuthor.AuthorID, schema.BookAuthor.Position,
		schema.RefAuthor.ID, schema.RefAuthor.FirstName, schema.RefAuthor.LastName,
		schema.RefAuthor.CreatedAt, schema.RefAuthor.UpdatedAt,
		schema.RefNationality.ID, schema.RefNationality.Name, schema.RefNationality.Code,
		schema.BookAuthor.Table,
		schema.RefAuthor.Table, schema.BookAuthor.AuthorID, schema.RefAuthor.ID,
		schema.RefNationality.Table, schema.RefAuthor.NationalityID, schema.RefNationality.ID,
		schema.BookAuthor.BookID,
		schema.BookAuthor.Position,
	)

	rows, err := repository.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "list memberships")
	}
	defer rows.Close()

	var memberships []BookAuthor
	for rows.Next() {
		var membership BookAuthor
		var author reference.Author
		var nID, nName, nCode *string

		err := rows.Scan(
			&membership.BookID,
			&membership.AuthorID,
			&membership.Position,
			&author.ID,
			&author.FirstName,
			&author.LastName,
			&author.CreatedAt,
			&author.UpdatedAt,
			&nID,
			&nName,
			&nCode,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan membership: %w", err)
		}

		if nID != nil {
			author.NationalityID = nID
			author.Nationality = &reference.Nationality{ID: *nID, Name: *nName, Code: *nCode}
		}

		membership.Author = &author
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate memberships: %w", err)
	}

	return memberships, nil
}

// touch keeps the updatedat column honest for membership-only edits.
//
// Membership writes happen in the junction table; the parent row's
// updatedat would otherwise never move.
func (repository *bookRepository) touch(ctx context.Context, bookID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		schema.CatalogBook.Table, schema.CatalogBook.UpdatedAt, schema.CatalogBook.ID)

	if _, err := repository.pool.Exec(ctx, query, bookID); err != nil {
		return dberr.Wrap(err, "touch book")
	}
	return nil
}
