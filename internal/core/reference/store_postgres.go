// Copyright (c) 2026 OpenShelf. All rights reserved.

package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/internal/platform/database/schema"
	"github.com/openshelf/openshelf/internal/platform/dberr"
)

// # PostgreSQL Repository

// referenceRepository implements the [Repository] interface using pgx.
type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed reference store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &referenceRepository{pool: pool}
}

// # Nationality Implementation

/*
ListNationalities retrieves all nationality rows ordered by name.
*/
func (repository *referenceRepository) ListNationalities(ctx context.Context) ([]*Nationality, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		ORDER BY %s ASC
	`,
		schema.RefNationality.ID, schema.RefNationality.Name, schema.RefNationality.Code, schema.RefNationality.CreatedAt,
		schema.RefNationality.Table,
		schema.RefNationality.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list nationalities")
	}
	defer rows.Close()

	var nationalities []*Nationality
	for rows.Next() {
		var n Nationality
		if err := rows.Scan(&n.ID, &n.Name, &n.Code, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan nationality: %w", err)
		}
		nationalities = append(nationalities, &n)
	}

	return nationalities, rows.Err()
}

/*
FindNationalityByID retrieves one nationality row.
*/
func (repository *referenceRepository) FindNationalityByID(ctx context.Context, id string) (*Nationality, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.RefNationality.ID, schema.RefNationality.Name, schema.RefNationality.Code, schema.RefNationality.CreatedAt,
		schema.RefNationality.Table,
		schema.RefNationality.ID,
	)

	var n Nationality
	err := repository.pool.QueryRow(ctx, query, id).Scan(&n.ID, &n.Name, &n.Code, &n.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "find nationality")
	}

	return &n, nil
}

/*
CreateNationality inserts a new nationality row.
*/
func (repository *referenceRepository) CreateNationality(ctx context.Context, nationality *Nationality) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
	`,
		schema.RefNationality.Table,
		schema.RefNationality.ID, schema.RefNationality.Name, schema.RefNationality.Code,
	)

	_, err := repository.pool.Exec(ctx, query, nationality.ID, nationality.Name, nationality.Code)
	if err != nil {
		return dberr.Wrap(err, "create nationality")
	}

	return nil
}

// # Genre Implementation

/*
ListGenres retrieves all genre rows ordered by name.
*/
func (repository *referenceRepository) ListGenres(ctx context.Context) ([]*Genre, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		ORDER BY %s ASC
	`,
		schema.RefGenre.ID, schema.RefGenre.Name, schema.RefGenre.CreatedAt,
		schema.RefGenre.Table,
		schema.RefGenre.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list genres")
	}
	defer rows.Close()

	var genres []*Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan genre: %w", err)
		}
		genres = append(genres, &g)
	}

	return genres, rows.Err()
}

/*
CreateGenre inserts a new genre row.
*/
func (repository *referenceRepository) CreateGenre(ctx context.Context, genre *Genre) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
	`,
		schema.RefGenre.Table,
		schema.RefGenre.ID, schema.RefGenre.Name,
	)

	_, err := repository.pool.Exec(ctx, query, genre.ID, genre.Name)
	if err != nil {
		return dberr.Wrap(err, "create genre")
	}

	return nil
}

// # Author Implementation

// authorColumns is the shared projection for author hydration with the
// nationality relation left-joined in.
func authorColumns() string {
	return fmt.Sprintf(`
		a.%s, a.%s, a.%s, a.%s, a.%s, a.%s,
		n.%s, n.%s, n.%s, n.%s
	`,
		schema.RefAuthor.ID, schema.RefAuthor.FirstName, schema.RefAuthor.LastName,
		schema.RefAuthor.NationalityID, schema.RefAuthor.CreatedAt, schema.RefAuthor.UpdatedAt,
		schema.RefNationality.ID, schema.RefNationality.Name, schema.RefNationality.Code, schema.RefNationality.CreatedAt,
	)
}

// scanAuthor hydrates one author row including the optional nationality.
func scanAuthor(row pgx.Row) (*Author, error) {
	var author Author

	// Left-joined relation columns are nullable
	var nID, nName, nCode *string
	var nCreatedAt *time.Time

	err := row.Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.NationalityID,
		&author.CreatedAt,
		&author.UpdatedAt,
		&nID,
		&nName,
		&nCode,
		&nCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if nID != nil {
		author.Nationality = &Nationality{
			ID:        *nID,
			Name:      *nName,
			Code:      *nCode,
			CreatedAt: *nCreatedAt,
		}
	}

	return &author, nil
}

/*
ListAuthors retrieves all contributors with nationality hydrated.
*/
func (repository *referenceRepository) ListAuthors(ctx context.Context) ([]*Author, error) {

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s a
		LEFT JOIN %s n ON a.%s = n.%s
		ORDER BY a.%s ASC, a.%s ASC
	`,
		authorColumns(),
		schema.RefAuthor.Table,
		schema.RefNationality.Table, schema.RefAuthor.NationalityID, schema.RefNationality.ID,
		schema.RefAuthor.LastName, schema.RefAuthor.FirstName,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list authors")
	}
	defer rows.Close()

	var authors []*Author
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan author: %w", err)
		}
		authors = append(authors, author)
	}

	return authors, rows.Err()
}

/*
FindAuthorByID retrieves one contributor with nationality hydrated.
*/
func (repository *referenceRepository) FindAuthorByID(ctx context.Context, id string) (*Author, error) {

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s a
		LEFT JOIN %s n ON a.%s = n.%s
		WHERE a.%s = $1
	`,
		authorColumns(),
		schema.RefAuthor.Table,
		schema.RefNationality.Table, schema.RefAuthor.NationalityID, schema.RefNationality.ID,
		schema.RefAuthor.ID,
	)

	author, err := scanAuthor(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find author")
	}

	return author, nil
}

/*
CreateAuthor inserts a new contributor.
*/
func (repository *referenceRepository) CreateAuthor(ctx context.Context, author *Author) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
	`,
		schema.RefAuthor.Table,
		schema.RefAuthor.ID, schema.RefAuthor.FirstName, schema.RefAuthor.LastName, schema.RefAuthor.NationalityID,
	)

	_, err := repository.pool.Exec(ctx, query, author.ID, author.FirstName, author.LastName, author.NationalityID)
	if err != nil {
		return dberr.Wrap(err, "create author")
	}

	return nil
}

/*
UpdateAuthor overwrites a contributor's mutable fields.
*/
func (repository *referenceRepository) UpdateAuthor(ctx context.Context, author *Author) error {

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = NOW()
		WHERE %s = $4
	`,
		schema.RefAuthor.Table,
		schema.RefAuthor.FirstName, schema.RefAuthor.LastName, schema.RefAuthor.NationalityID, schema.RefAuthor.UpdatedAt,
		schema.RefAuthor.ID,
	)

	result, err := repository.pool.Exec(ctx, query, author.FirstName, author.LastName, author.NationalityID, author.ID)
	if err != nil {
		return dberr.Wrap(err, "update author")
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
AuthorIsPrimary reports whether the author holds position 1 on any book.
*/
func (repository *referenceRepository) AuthorIsPrimary(ctx context.Context, authorID string) (bool, error) {

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE %s = $1 AND %s = 1
		)
	`,
		schema.BookAuthor.Table, schema.BookAuthor.AuthorID, schema.BookAuthor.Position,
	)

	var primary bool
	if err := repository.pool.QueryRow(ctx, query, authorID).Scan(&primary); err != nil {
		return false, dberr.Wrap(err, "check primary authorship")
	}

	return primary, nil
}
