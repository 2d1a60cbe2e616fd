// Copyright (c) 2026 OpenShelf. All rights reserved.

package stats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/internal/platform/database/schema"
	"github.com/openshelf/openshelf/internal/platform/dberr"
)

// # PostgreSQL Repository

// statsRepository implements [Repository] using pgx.
type statsRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed statistics store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &statsRepository{pool: pool}
}

/*
BooksPerGenre counts books grouped by genre name.
*/
func (repository *statsRepository) BooksPerGenre(ctx context.Context) ([]GenreCount, error) {

	query := fmt.Sprintf(`
		SELECT g.%s, COUNT(b.%s)
		FROM %s g
		LEFT JOIN %s b ON b.%s = g.%s
		GROUP BY g.%s
		ORDER BY g.%s ASC
	`,
		schema.RefGenre.Name, schema.CatalogBook.ID,
		schema.RefGenre.Table,
		schema.CatalogBook.Table, schema.CatalogBook.GenreID, schema.RefGenre.ID,
		schema.RefGenre.Name,
		schema.RefGenre.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "aggregate books per genre")
	}
	defer rows.Close()

	var counts []GenreCount
	for rows.Next() {
		var row GenreCount
		if err := rows.Scan(&row.Genre, &row.Count); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan genre count: %w", err)
		}
		counts = append(counts, row)
	}

	return counts, rows.Err()
}

/*
AuthorsPerNationality counts authors grouped by nationality name.
*/
func (repository *statsRepository) AuthorsPerNationality(ctx context.Context) ([]NationalityCount, error) {

	query := fmt.Sprintf(`
		SELECT n.%s, COUNT(a.%s)
		FROM %s n
		LEFT JOIN %s a ON a.%s = n.%s
		GROUP BY n.%s
		ORDER BY n.%s ASC
	`,
		schema.RefNationality.Name, schema.RefAuthor.ID,
		schema.RefNationality.Table,
		schema.RefAuthor.Table, schema.RefAuthor.NationalityID, schema.RefNationality.ID,
		schema.RefNationality.Name,
		schema.RefNationality.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "aggregate authors per nationality")
	}
	defer rows.Close()

	var counts []NationalityCount
	for rows.Next() {
		var row NationalityCount
		if err := rows.Scan(&row.Nationality, &row.Count); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan nationality count: %w", err)
		}
		counts = append(counts, row)
	}

	return counts, rows.Err()
}

/*
AuthorStats splits each author's book count into solo and co-authored work.

Description: A lateral-free formulation — per-book author counts come from a
grouped subquery over the junction table, joined back per membership.
*/
func (repository *statsRepository) AuthorStats(ctx context.Context) ([]AuthorStat, error) {

	query := fmt.Sprintf(`
		SELECT
			a.%s || ' ' || a.%s AS author,
			COALESCE(SUM(CASE WHEN bc.author_count = 1 THEN 1 ELSE 0 END), 0) AS solo_books,
			COALESCE(SUM(CASE WHEN bc.author_count > 1 THEN 1 ELSE 0 END), 0) AS coauthored_books
		FROM %s a
		LEFT JOIN %s ba ON ba.%s = a.%s
		LEFT JOIN (
			SELECT %s AS book_id, COUNT(*) AS author_count
			FROM %s
			GROUP BY %s
		) bc ON bc.book_id = ba.%s
		GROUP BY a.%s, a.%s, a.%s
		ORDER BY a.%s ASC, a.%s ASC
	`,
		schema.RefAuthor.FirstName, schema.RefAuthor.LastName,
		schema.RefAuthor.Table,
		schema.BookAuthor.Table, schema.BookAuthor.AuthorID, schema.RefAuthor.ID,
		schema.BookAuthor.BookID,
		schema.BookAuthor.Table,
		schema.BookAuthor.BookID,
		schema.BookAuthor.BookID,
		schema.RefAuthor.ID, schema.RefAuthor.FirstName, schema.RefAuthor.LastName,
		schema.RefAuthor.LastName, schema.RefAuthor.FirstName,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "aggregate author stats")
	}
	defer rows.Close()

	var statsRows []AuthorStat
	for rows.Next() {
		var row AuthorStat
		if err := rows.Scan(&row.Author, &row.SoloBooks, &row.CoauthoredBooks); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan author stat: %w", err)
		}
		statsRows = append(statsRows, row)
	}

	return statsRows, rows.Err()
}
