// Copyright (c) 2026 OpenShelf. All rights reserved.

package reference

import (
	"context"
	"log/slog"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/validate"
	"github.com/openshelf/openshelf/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for the catalog's master data.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new reference [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Nationality Management

/*
ListNationalities returns all nationality rows ordered by name.
*/
func (service *Service) ListNationalities(context context.Context) ([]*Nationality, error) {
	return service.repo.ListNationalities(context)
}

/*
CreateNationality registers a new country-of-origin row.

Description: The three-digit code is validated for shape only; whether a
code participates in identifier generation is decided by the allow-list at
generation time, so unlisted codes are storable.

Parameters:
  - context: context.Context
  - nationality: *Nationality

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateNationality(context context.Context, nationality *Nationality) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, nationality.Name).MaxLen(FieldName, nationality.Name, 100)
	validator.Required(FieldCode, nationality.Code).
		MinLen(FieldCode, nationality.Code, 3).
		MaxLen(FieldCode, nationality.Code, 3).
		Digits(FieldCode, nationality.Code)

	if err := validator.Err(); err != nil {
		return err
	}

	nationality.ID = uuid.New()

	if err := service.repo.CreateNationality(context, nationality); err != nil {
		return err
	}

	service.logger.Info("nationality_created",
		slog.String("nationality_id", nationality.ID),
		slog.String("code", nationality.Code),
	)

	return nil
}

// # Genre Management

/*
ListGenres returns all genre rows ordered by name.
*/
func (service *Service) ListGenres(context context.Context) ([]*Genre, error) {
	return service.repo.ListGenres(context)
}

/*
CreateGenre registers a new literary genre.
*/
func (service *Service) CreateGenre(context context.Context, genre *Genre) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, genre.Name).MaxLen(FieldName, genre.Name, 100)

	if err := validator.Err(); err != nil {
		return err
	}

	genre.ID = uuid.New()

	if err := service.repo.CreateGenre(context, genre); err != nil {
		return err
	}

	service.logger.Info("genre_created", slog.String("genre_id", genre.ID))

	return nil
}

// # Author Management

/*
ListAuthors returns all authors with their nationality hydrated.
*/
func (service *Service) ListAuthors(context context.Context) ([]*Author, error) {
	return service.repo.ListAuthors(context)
}

/*
GetAuthor retrieves a single author with its nationality hydrated.
*/
func (service *Service) GetAuthor(context context.Context, id string) (*Author, error) {
	return service.repo.FindAuthorByID(context, id)
}

/*
CreateAuthor registers a new contributor.

Parameters:
  - context: context.Context
  - author: *Author (Nationality optional)

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateAuthor(context context.Context, author *Author) error {
	validator := &validate.Validator{}
	validator.Required(FieldFirstName, author.FirstName).MaxLen(FieldFirstName, author.FirstName, 100)
	validator.Required(FieldLastName, author.LastName).MaxLen(FieldLastName, author.LastName, 100)

	if err := validator.Err(); err != nil {
		return err
	}

	author.ID = uuid.New()

	if err := service.repo.CreateAuthor(context, author); err != nil {
		return err
	}

	service.logger.Info("author_created",
		slog.String("author_id", author.ID),
		slog.String("name", author.DisplayName()),
	)

	return nil
}

/*
UpdateAuthor modifies an existing contributor.

Description: The nationality relation is frozen while the author is listed
first on any book, because the nationality code is baked into those books'
identifiers. Changing it would silently desynchronize every identifier that
was derived from it.

Parameters:
  - context: context.Context
  - author: *Author

Returns:
  - error: apperr.Conflict when the nationality of a leading author would change
*/
func (service *Service) UpdateAuthor(context context.Context, author *Author) error {
	validator := &validate.Validator{}
	validator.Required(FieldFirstName, author.FirstName).MaxLen(FieldFirstName, author.FirstName, 100)
	validator.Required(FieldLastName, author.LastName).MaxLen(FieldLastName, author.LastName, 100)

	if err := validator.Err(); err != nil {
		return err
	}

	// Nationality lock check
	current, err := service.repo.FindAuthorByID(context, author.ID)
	if err != nil {
		return err
	}

	if nationalityChanged(current.NationalityID, author.NationalityID) {
		primary, err := service.repo.AuthorIsPrimary(context, author.ID)
		if err != nil {
			return err
		}
		if primary {
			return apperr.Conflict("Nationality is locked while the author leads a book")
		}
	}

	if err := service.repo.UpdateAuthor(context, author); err != nil {
		return err
	}

	service.logger.Info("author_updated", slog.String("author_id", author.ID))

	return nil
}

// nationalityChanged compares two optional nationality relations.
func nationalityChanged(current, next *string) bool {
	switch {
	case current == nil && next == nil:
		return false
	case current == nil || next == nil:
		return true
	default:
		return *current != *next
	}
}
