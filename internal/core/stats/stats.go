// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
Package stats computes aggregate catalog statistics.

The aggregates are computed on demand from the live tables with GROUP BY
queries; nothing is precomputed or cached.
*/
package stats

import "context"

// GenreCount is one row of the books-per-genre aggregate.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// NationalityCount is one row of the authors-per-nationality aggregate.
type NationalityCount struct {
	Nationality string `json:"nationality"`
	Count       int    `json:"count"`
}

// AuthorStat reports how many books an author wrote alone versus with
// co-authors.
type AuthorStat struct {
	Author          string `json:"author"` // "First Last"
	SoloBooks       int    `json:"solo_books"`
	CoauthoredBooks int    `json:"coauthored_books"`
}

// Repository defines the aggregate queries backing the statistics surface.
type Repository interface {
	BooksPerGenre(context context.Context) ([]GenreCount, error)
	AuthorsPerNationality(context context.Context) ([]NationalityCount, error)
	AuthorStats(context context.Context) ([]AuthorStat, error)
}

// Overview bundles every aggregate for a single reporting surface.
type Overview struct {
	BooksPerGenre         []GenreCount       `json:"books_per_genre"`
	AuthorsPerNationality []NationalityCount `json:"authors_per_nationality"`
	AuthorStats           []AuthorStat       `json:"author_stats"`
}

// Service exposes the statistics queries.
type Service struct {
	repo Repository
}

// NewService constructs a new stats [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOverview gathers all aggregates in one call.
func (service *Service) GetOverview(context context.Context) (*Overview, error) {
	booksPerGenre, err := service.repo.BooksPerGenre(context)
	if err != nil {
		return nil, err
	}

	authorsPerNationality, err := service.repo.AuthorsPerNationality(context)
	if err != nil {
		return nil, err
	}

	authorStats, err := service.repo.AuthorStats(context)
	if err != nil {
		return nil, err
	}

	return &Overview{
		BooksPerGenre:         booksPerGenre,
		AuthorsPerNationality: authorsPerNationality,
		AuthorStats:           authorStats,
	}, nil
}
