// Copyright (c) 2026 OpenShelf. All rights reserved.

package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/openshelf/openshelf/internal/core/audit"
	"github.com/openshelf/openshelf/internal/core/isbn"
	"github.com/openshelf/openshelf/internal/platform/constants"
	"github.com/openshelf/openshelf/internal/platform/ctxutil"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/validate"
	"github.com/openshelf/openshelf/pkg/uuid"
)

// # Service Layer

// Service orchestrates book mutations, identifier assignment and auditing.
//
// Every effective mutation runs the same pipeline: snapshot before, apply
// the mutation, possibly regenerate the identifier, snapshot after, diff,
// and record the delta. A no-op save produces no audit record.
type Service struct {
	repo      Repository
	auditlog  audit.Repository
	generator *isbn.Generator
	logger    *slog.Logger
}

// NewService constructs a new catalog [Service].
//
// The generator's oracle must be backed by the same registry the repository
// writes to, otherwise the uniqueness search and the committed identifiers
// diverge.
func NewService(repo Repository, auditlog audit.Repository, generator *isbn.Generator, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		auditlog:  auditlog,
		generator: generator,
		logger:    logger,
	}
}

// # Book Retrieval

/*
ListBooks retrieves a paginated and filtered list of books.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Book: List of hydrated books
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repo.ListBooks(context, filter, limit, offset)
}

/*
GetBook retrieves a single book with genre, authors and nationalities hydrated.
*/
func (service *Service) GetBook(context context.Context, id string) (*Book, error) {
	return service.repo.FindBookByID(context, id)
}

/*
GetHistory returns the audit trail of a single book, newest first.
*/
func (service *Service) GetHistory(context context.Context, bookID string) ([]*audit.Record, error) {
	return service.auditlog.ListByEntity(context, EntityType, bookID)
}

// # Book Mutation

/*
CreateBook persists a new book, assigns its identifier when possible, and
emits a CREATE audit record.

Description: Identifier assignment is synchronous but conditional — a book
created before any author is attached is a legitimate transient state, so
assignment is simply deferred to the first update that attaches one. The
CREATE record always represents every field as changed from nothing.

Parameters:
  - context: context.Context carrying the acting user
  - book: *Book with Authors optionally pre-filled (AuthorID, Position)

Returns:
  - error: Validation, generation or persistence failures
*/
func (service *Service) CreateBook(context context.Context, book *Book) error {
	if err := service.validateBook(book); err != nil {
		return err
	}

	book.ID = uuid.New()

	if err := service.repo.CreateBook(context, book); err != nil {
		return err
	}

	// First assignment, deferred when no authors exist yet
	hydrated, err := service.repo.FindBookByID(context, book.ID)
	if err != nil {
		return err
	}
	if err := service.ensureIdentifier(context, hydrated); err != nil {
		return err
	}

	// Creation is "every field changed from nothing"
	record := service.newRecord(context, hydrated, audit.ActionCreate, audit.Creation(Snapshot(hydrated)))
	if err := service.auditlog.Record(context, record); err != nil {
		return err
	}

	book.ISBN = hydrated.ISBN

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("actor", record.ActorID),
		slog.Bool("isbn_assigned", hydrated.ISBN != nil),
	)

	return nil
}

/*
UpdateBook applies scalar and membership edits to an existing book.

Description: Runs the full pipeline — snapshot before, mutate, regenerate
the identifier when the resolved primary classification code no longer
matches the one embedded in it, snapshot after, diff, record. The UPDATE
record is skipped entirely when nothing effectively changed.

When book.Authors is non-nil the membership set is replaced wholesale with
positions renumbered 1..n in the given order; a nil Authors slice leaves
memberships untouched.

Parameters:
  - context: context.Context carrying the acting user
  - book: *Book with the desired end state

Returns:
  - error: Validation, generation or persistence failures
*/
func (service *Service) UpdateBook(context context.Context, book *Book) error {
	if err := service.validateBook(book); err != nil {
		return err
	}

	// 1. Snapshot before mutation
	current, err := service.repo.FindBookByID(context, book.ID)
	if err != nil {
		return err
	}
	before := Snapshot(current)

	// 2. Apply the caller's mutation
	if err := service.repo.UpdateBook(context, book); err != nil {
		return err
	}
	if book.Authors != nil {
		if err := service.repo.SetAuthors(context, book.ID, book.Authors); err != nil {
			return err
		}
	}

	// 3. Maybe regenerate the identifier against the new author graph
	hydrated, err := service.repo.FindBookByID(context, book.ID)
	if err != nil {
		return err
	}
	if err := service.ensureIdentifier(context, hydrated); err != nil {
		return err
	}

	// 4. Snapshot after, diff, record (skipped when empty)
	changes := audit.Diff(before, Snapshot(hydrated))
	if len(changes) == 0 {
		return nil
	}

	record := service.newRecord(context, hydrated, audit.ActionUpdate, changes)
	if err := service.auditlog.Record(context, record); err != nil {
		return err
	}

	book.ISBN = hydrated.ISBN

	service.logger.Info("book_updated",
		slog.String("book_id", book.ID),
		slog.String("actor", record.ActorID),
		slog.Int("changed_fields", len(changes)),
	)

	return nil
}

/*
AddAuthor appends an author to a book's membership list at the next free
position and runs the update pipeline.

Description: The position is auto-assigned as max(position)+1 within one
transaction scope keyed by the book, so concurrent first memberships cannot
both land at position 1. Attaching a first author triggers deferred
identifier assignment.

Parameters:
  - context: context.Context carrying the acting user
  - bookID: string (UUIDv7)
  - authorID: string (UUIDv7)

Returns:
  - error: ErrDuplicate when the pair already exists
*/
func (service *Service) AddAuthor(context context.Context, bookID, authorID string) error {

	current, err := service.repo.FindBookByID(context, bookID)
	if err != nil {
		return err
	}
	before := Snapshot(current)

	if err := service.repo.AddAuthor(context, &BookAuthor{BookID: bookID, AuthorID: authorID}); err != nil {
		return err
	}

	hydrated, err := service.repo.FindBookByID(context, bookID)
	if err != nil {
		return err
	}
	if err := service.ensureIdentifier(context, hydrated); err != nil {
		return err
	}

	changes := audit.Diff(before, Snapshot(hydrated))
	if len(changes) == 0 {
		return nil
	}

	record := service.newRecord(context, hydrated, audit.ActionUpdate, changes)
	if err := service.auditlog.Record(context, record); err != nil {
		return err
	}

	service.logger.Info("book_author_added",
		slog.String("book_id", bookID),
		slog.String("author_id", authorID),
	)

	return nil
}

/*
RemoveAuthor detaches an author from a book and runs the update pipeline.

Description: Removing the primary author can shift primacy to the next
position and therefore regenerate the identifier; the emitted record
captures both the authors string and the isbn transition.
*/
func (service *Service) RemoveAuthor(context context.Context, bookID, authorID string) error {

	current, err := service.repo.FindBookByID(context, bookID)
	if err != nil {
		return err
	}
	before := Snapshot(current)

	if err := service.repo.RemoveAuthor(context, bookID, authorID); err != nil {
		return err
	}

	hydrated, err := service.repo.FindBookByID(context, bookID)
	if err != nil {
		return err
	}
	if err := service.ensureIdentifier(context, hydrated); err != nil {
		return err
	}

	changes := audit.Diff(before, Snapshot(hydrated))
	if len(changes) == 0 {
		return nil
	}

	record := service.newRecord(context, hydrated, audit.ActionUpdate, changes)
	if err := service.auditlog.Record(context, record); err != nil {
		return err
	}

	service.logger.Info("book_author_removed",
		slog.String("book_id", bookID),
		slog.String("author_id", authorID),
	)

	return nil
}

/*
EnsureIdentifier runs the identifier rule for one book outside of an edit,
auditing the transition when one happens.

Description: Maintenance entry point for catching up books whose assignment
was deferred (created before any author existed) or whose embedded segment
drifted from the primary author's code while audited writes were down. The
result reports whether an identifier was assigned or regenerated.

Parameters:
  - context: context.Context carrying the acting user
  - bookID: string (UUIDv7)

Returns:
  - bool: true when the identifier changed
  - error: Generation or persistence failures
*/
func (service *Service) EnsureIdentifier(context context.Context, bookID string) (bool, error) {

	book, err := service.repo.FindBookByID(context, bookID)
	if err != nil {
		return false, err
	}
	before := Snapshot(book)

	// ensureIdentifier updates book.ISBN in place on assignment
	if err := service.ensureIdentifier(context, book); err != nil {
		return false, err
	}

	changes := audit.Diff(before, Snapshot(book))
	if len(changes) == 0 {
		return false, nil
	}

	record := service.newRecord(context, book, audit.ActionUpdate, changes)
	if err := service.auditlog.Record(context, record); err != nil {
		return false, err
	}

	service.logger.Info("isbn_backfilled",
		slog.String("book_id", bookID),
		slog.String("isbn", *book.ISBN),
	)

	return true, nil
}

// # Identifier Lifecycle

// ensureIdentifier assigns or regenerates the book's identifier in place.
//
// Rules, in order:
//   - no authors: assignment stays deferred, never an error.
//   - no identifier yet: generate unconditionally; an unresolvable primary
//     classification code degrades to the sentinel.
//   - identifier present: regenerate only when the primary code resolves and
//     differs from the classification segment embedded at offset 3..6. The
//     rest of the identifier is deliberately not re-validated for staleness.
//
// Regeneration is always a full redraw — a classification mismatch
// invalidates the whole identifier, and hand-splicing a "fixed" segment
// could collide with one already issued under the new segment.
func (service *Service) ensureIdentifier(ctx context.Context, book *Book) error {
	if len(book.Authors) == 0 {
		return nil
	}

	code, resolved := PrimaryClassificationCode(book)

	if book.ISBN != nil && *book.ISBN != "" {
		if !resolved {
			return nil
		}
		if code == isbn.ClassificationSegment(*book.ISBN) {
			return nil
		}
	}

	return service.assignIdentifier(ctx, book, code)
}

// assignIdentifier draws identifiers until one commits.
//
// A write-time uniqueness violation means another writer raced us to the
// same candidate; it triggers a full regeneration, bounded by a small
// attempt budget, rather than failing the operation.
func (service *Service) assignIdentifier(ctx context.Context, book *Book, code string) error {
	var lastErr error

	for attempt := 1; attempt <= constants.ISBNAssignAttempts; attempt++ {
		candidate, err := service.generator.Generate(ctx, code)
		if err != nil {
			return err
		}

		err = service.repo.SetISBN(ctx, book.ID, candidate)
		if err == nil {
			book.ISBN = &candidate

			service.logger.Info("isbn_assigned",
				slog.String("book_id", book.ID),
				slog.String("isbn", candidate),
				slog.Int("attempt", attempt),
			)
			return nil
		}

		if !dberr.IsDuplicate(err) {
			return err
		}
		lastErr = err

		service.logger.Warn("isbn_write_conflict",
			slog.String("book_id", book.ID),
			slog.String("candidate", candidate),
			slog.Int("attempt", attempt),
		)
	}

	return lastErr
}

// # Internals

// newRecord assembles an audit record attributed to the context's actor.
func (service *Service) newRecord(ctx context.Context, book *Book, action audit.Action, changes audit.ChangeSet) *audit.Record {
	return &audit.Record{
		ID:         uuid.New(),
		EntityType: EntityType,
		EntityID:   book.ID,
		Label:      book.Label(),
		Action:     action,
		Changes:    changes,
		ActorID:    ctxutil.GetActor(ctx),
		CreatedAt:  time.Now().UTC(),
	}
}

// validateBook enforces the interdependent field rules for books.
func (service *Service) validateBook(book *Book) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, book.Title).MaxLen(FieldTitle, book.Title, 300)
	validator.Required("genre_id", book.GenreID)

	if book.Adapted && (book.FilmTitle == nil || *book.FilmTitle == "") {
		validator.Custom(FieldFilmTitle, true, "Please enter a film title for adapted books")
	}
	if book.FilmTitle != nil {
		validator.MaxLen(FieldFilmTitle, *book.FilmTitle, 300)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	// Non-adapted books never carry a film title
	if !book.Adapted {
		book.FilmTitle = nil
	}

	return nil
}
