// Copyright (c) 2026 OpenShelf. All rights reserved.

package catalog

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/core/audit"
	"github.com/openshelf/openshelf/internal/core/isbn"
	"github.com/openshelf/openshelf/internal/core/reference"
	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/ctxutil"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/pkg/pointer"
)

// fakeStore is an in-memory Repository backing the orchestration tests.
type fakeStore struct {
	books       map[string]*Book
	memberships map[string][]BookAuthor
	authors     map[string]*reference.Author
	genres      map[string]*reference.Genre
	issued      map[string]string // isbn → bookID

	// setISBNConflicts makes the next N SetISBN calls fail with ErrDuplicate
	setISBNConflicts int
	setISBNCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:       map[string]*Book{},
		memberships: map[string][]BookAuthor{},
		authors:     map[string]*reference.Author{},
		genres:      map[string]*reference.Genre{"g-fiction": {ID: "g-fiction", Name: "Fiction"}},
		issued:      map[string]string{},
	}
}

func (f *fakeStore) ListBooks(_ context.Context, _ Filter, _, _ int) ([]*Book, int, error) {
	var out []*Book
	for id := range f.books {
		book, _ := f.FindBookByID(context.Background(), id)
		out = append(out, book)
	}
	return out, len(out), nil
}

func (f *fakeStore) FindBookByID(_ context.Context, id string) (*Book, error) {
	stored, ok := f.books[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}

	book := *stored
	book.Genre = f.genres[book.GenreID]

	memberships := make([]BookAuthor, len(f.memberships[id]))
	copy(memberships, f.memberships[id])
	sort.Slice(memberships, func(i, j int) bool { return memberships[i].Position < memberships[j].Position })
	for i := range memberships {
		memberships[i].Author = f.authors[memberships[i].AuthorID]
	}
	book.Authors = memberships

	return &book, nil
}

func (f *fakeStore) CreateBook(_ context.Context, book *Book) error {
	stored := *book
	stored.Authors = nil
	f.books[book.ID] = &stored

	for i, membership := range book.Authors {
		position := membership.Position
		if position == 0 {
			position = i + 1
		}
		f.memberships[book.ID] = append(f.memberships[book.ID], BookAuthor{
			BookID: book.ID, AuthorID: membership.AuthorID, Position: position,
		})
	}
	return nil
}

func (f *fakeStore) UpdateBook(_ context.Context, book *Book) error {
	stored, ok := f.books[book.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	stored.Title = book.Title
	stored.GenreID = book.GenreID
	stored.CoverKey = book.CoverKey
	stored.Adapted = book.Adapted
	stored.FilmTitle = book.FilmTitle
	return nil
}

func (f *fakeStore) SetISBN(_ context.Context, bookID, candidate string) error {
	f.setISBNCalls++
	if f.setISBNConflicts > 0 {
		f.setISBNConflicts--
		return dberr.ErrDuplicate
	}
	if owner, taken := f.issued[candidate]; taken && owner != bookID {
		return dberr.ErrDuplicate
	}

	stored := f.books[bookID]
	if stored.ISBN != nil {
		delete(f.issued, *stored.ISBN)
	}
	stored.ISBN = pointer.To(candidate)
	f.issued[candidate] = bookID
	return nil
}

func (f *fakeStore) ISBNExists(_ context.Context, candidate string) (bool, error) {
	_, taken := f.issued[candidate]
	return taken, nil
}

func (f *fakeStore) AddAuthor(_ context.Context, membership *BookAuthor) error {
	for _, existing := range f.memberships[membership.BookID] {
		if existing.AuthorID == membership.AuthorID {
			return dberr.ErrDuplicate
		}
	}
	if membership.Position == 0 {
		max := 0
		for _, existing := range f.memberships[membership.BookID] {
			if existing.Position > max {
				max = existing.Position
			}
		}
		membership.Position = max + 1
	}
	f.memberships[membership.BookID] = append(f.memberships[membership.BookID], *membership)
	return nil
}

func (f *fakeStore) SetAuthors(_ context.Context, bookID string, memberships []BookAuthor) error {
	replaced := make([]BookAuthor, 0, len(memberships))
	for i, membership := range memberships {
		replaced = append(replaced, BookAuthor{BookID: bookID, AuthorID: membership.AuthorID, Position: i + 1})
	}
	f.memberships[bookID] = replaced
	return nil
}

func (f *fakeStore) RemoveAuthor(_ context.Context, bookID, authorID string) error {
	kept := f.memberships[bookID][:0]
	found := false
	for _, membership := range f.memberships[bookID] {
		if membership.AuthorID == authorID {
			found = true
			continue
		}
		kept = append(kept, membership)
	}
	if !found {
		return dberr.ErrNotFound
	}
	f.memberships[bookID] = kept
	return nil
}

// fakeRecorder captures audit records in memory.
type fakeRecorder struct {
	records []*audit.Record
}

func (f *fakeRecorder) Record(_ context.Context, rec *audit.Record) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRecorder) ListByEntity(_ context.Context, entityType, entityID string) ([]*audit.Record, error) {
	var matched []*audit.Record
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].EntityType == entityType && f.records[i].EntityID == entityID {
			matched = append(matched, f.records[i])
		}
	}
	return matched, nil
}

func (f *fakeRecorder) ListRecent(_ context.Context, limit int) ([]*audit.Record, error) {
	var recent []*audit.Record
	for i := len(f.records) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, f.records[i])
	}
	return recent, nil
}

// newTestService wires a service against the in-memory store.
func newTestService(store *fakeStore) (*Service, *fakeRecorder) {
	recorder := &fakeRecorder{}
	generator := isbn.NewGenerator(isbn.OracleFunc(store.ISBNExists))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, recorder, generator, logger), recorder
}

// addAuthorRow seeds an author, optionally with a nationality code.
func (f *fakeStore) addAuthorRow(id, first, last, code string) {
	author := &reference.Author{ID: id, FirstName: first, LastName: last}
	if code != "" {
		author.NationalityID = pointer.To("nat-" + code)
		author.Nationality = &reference.Nationality{ID: "nat-" + code, Name: "Nat " + code, Code: code}
	}
	f.authors[id] = author
}

var isbnWithSegment600 = regexp.MustCompile(`^97[89]600\d{7}$`)

/*
TestCreateBook_NoAuthors covers the deferred-assignment path: a book created
before any author is attached gets no identifier, and its CREATE record
represents every field as changed from nothing.
*/
func TestCreateBook_NoAuthors(t *testing.T) {
	store := newFakeStore()
	service, recorder := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction"}
	require.NoError(t, service.CreateBook(context.Background(), book))

	assert.Nil(t, book.ISBN)

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, audit.ActionCreate, record.Action)
	assert.Equal(t, EntityType, record.EntityType)
	assert.Equal(t, book.ID, record.EntityID)
	assert.Equal(t, "Dune ()", record.Label)

	// Every snapshot field transitions from nothing
	require.Len(t, record.Changes, 8)
	assert.Equal(t, audit.Change{Old: audit.Null(), New: audit.String("Dune")}, record.Changes[FieldTitle])
	assert.Equal(t, audit.Change{Old: audit.Null(), New: audit.Null()}, record.Changes[FieldAuthors])
	assert.Equal(t, audit.Change{Old: audit.Null(), New: audit.Null()}, record.Changes[FieldISBN])
}

/*
TestCreateBook_WithAuthor covers synchronous first assignment: the
identifier embeds the primary author's classification segment and carries a
valid check digit.
*/
func TestCreateBook_WithAuthor(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	service, recorder := newTestService(store)

	book := &Book{
		Title:   "Dune",
		GenreID: "g-fiction",
		Authors: []BookAuthor{{AuthorID: "a1"}},
	}
	require.NoError(t, service.CreateBook(context.Background(), book))

	require.NotNil(t, book.ISBN)
	assert.Regexp(t, isbnWithSegment600, *book.ISBN)
	assert.True(t, isbn.Valid(*book.ISBN))

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, audit.ActionCreate, record.Action)
	assert.Equal(t, audit.String("Frank Herbert"), record.Changes[FieldAuthors].New)
	assert.Equal(t, audit.String(*book.ISBN), record.Changes[FieldISBN].New)
}

/*
TestCreateBook_Validation covers the interdependent adapted/film_title rule.
*/
func TestCreateBook_Validation(t *testing.T) {
	tests := []struct {
		name    string
		book    Book
		wantErr bool
	}{
		{"valid plain", Book{Title: "Dune", GenreID: "g-fiction"}, false},
		{"missing title", Book{GenreID: "g-fiction"}, true},
		{"missing genre", Book{Title: "Dune"}, true},
		{"adapted without film title", Book{Title: "Dune", GenreID: "g-fiction", Adapted: true}, true},
		{"adapted with film title", Book{Title: "Dune", GenreID: "g-fiction", Adapted: true, FilmTitle: pointer.To("Dune: Part One")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService(newFakeStore())

			book := tt.book
			err := service.CreateBook(context.Background(), &book)

			if tt.wantErr {
				require.Error(t, err)
				assert.NotNil(t, apperr.As(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

/*
TestCreateBook_FilmTitleCleared verifies that a film title on a non-adapted
book is discarded before persistence.
*/
func TestCreateBook_FilmTitleCleared(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction", FilmTitle: pointer.To("Stray")}
	require.NoError(t, service.CreateBook(context.Background(), book))

	stored, err := service.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.FilmTitle)
}

/*
TestAddAuthor_DeferredAssignment covers attaching a first author to an
identifier-less book: assignment catches up during the same update pipeline
and the record captures both the authors and isbn transitions.
*/
func TestAddAuthor_DeferredAssignment(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	service, recorder := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction"}
	require.NoError(t, service.CreateBook(context.Background(), book))
	require.Nil(t, book.ISBN)

	require.NoError(t, service.AddAuthor(context.Background(), book.ID, "a1"))

	stored, err := service.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ISBN)
	assert.Regexp(t, isbnWithSegment600, *stored.ISBN)
	assert.True(t, isbn.Valid(*stored.ISBN))

	require.Len(t, recorder.records, 2)
	update := recorder.records[1]
	assert.Equal(t, audit.ActionUpdate, update.Action)
	assert.Equal(t, audit.Change{Old: audit.Null(), New: audit.String("Frank Herbert")}, update.Changes[FieldAuthors])
	assert.Equal(t, audit.Change{Old: audit.Null(), New: audit.String(*stored.ISBN)}, update.Changes[FieldISBN])
}

/*
TestCreateBook_DistinctIdentifiers: two books created back-to-back with the
same classification code and the same backing registry must never share an
identifier.
*/
func TestCreateBook_DistinctIdentifiers(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	store.addAuthorRow("a2", "Brian", "Herbert", "600")
	service, _ := newTestService(store)

	first := &Book{Title: "Dune", GenreID: "g-fiction", Authors: []BookAuthor{{AuthorID: "a1"}}}
	second := &Book{Title: "Dune Messiah", GenreID: "g-fiction", Authors: []BookAuthor{{AuthorID: "a2"}}}

	require.NoError(t, service.CreateBook(context.Background(), first))
	require.NoError(t, service.CreateBook(context.Background(), second))

	require.NotNil(t, first.ISBN)
	require.NotNil(t, second.ISBN)
	assert.NotEqual(t, *first.ISBN, *second.ISBN)
}

/*
TestUpdateBook_UnrelatedField: an edit to a free-text field with the
classification unchanged produces a change-set containing exactly that field
and leaves the identifier untouched.
*/
func TestUpdateBook_UnrelatedField(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	service, recorder := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction", Adapted: true, FilmTitle: pointer.To("Dune: Part One"), Authors: []BookAuthor{{AuthorID: "a1"}}}
	require.NoError(t, service.CreateBook(context.Background(), book))
	originalISBN := *book.ISBN

	edit := *book
	edit.Authors = nil
	edit.FilmTitle = pointer.To("Dune: Part Two")
	require.NoError(t, service.UpdateBook(context.Background(), &edit))

	require.Len(t, recorder.records, 2)
	update := recorder.records[1]
	assert.Equal(t, audit.ActionUpdate, update.Action)
	require.Len(t, update.Changes, 1)
	assert.Equal(t, audit.Change{
		Old: audit.String("Dune: Part One"),
		New: audit.String("Dune: Part Two"),
	}, update.Changes[FieldFilmTitle])

	stored, _ := service.GetBook(context.Background(), book.ID)
	assert.Equal(t, originalISBN, *stored.ISBN)
}

/*
TestUpdateBook_NoOp: saving without changing anything writes no record.
*/
func TestUpdateBook_NoOp(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	service, recorder := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction", Authors: []BookAuthor{{AuthorID: "a1"}}}
	require.NoError(t, service.CreateBook(context.Background(), book))

	edit := *book
	edit.Authors = nil
	require.NoError(t, service.UpdateBook(context.Background(), &edit))

	assert.Len(t, recorder.records, 1) // only the CREATE
}

/*
TestUpdateBook_Regeneration: changing the primary author's nationality so
its code normalizes to a different segment regenerates the whole identifier,
and the record captures the isbn transition.
*/
func TestUpdateBook_Regeneration(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	service, recorder := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction", Authors: []BookAuthor{{AuthorID: "a1"}}}
	require.NoError(t, service.CreateBook(context.Background(), book))
	originalISBN := *book.ISBN
	require.Equal(t, "600", isbn.ClassificationSegment(originalISBN))

	// The author's nationality changes underneath the book
	store.authors["a1"].Nationality = &reference.Nationality{ID: "nat-601", Name: "Nat 601", Code: "601"}
	store.authors["a1"].NationalityID = pointer.To("nat-601")

	edit := *book
	edit.Authors = nil
	require.NoError(t, service.UpdateBook(context.Background(), &edit))

	stored, _ := service.GetBook(context.Background(), book.ID)
	require.NotNil(t, stored.ISBN)
	assert.Equal(t, "601", isbn.ClassificationSegment(*stored.ISBN))
	assert.NotEqual(t, originalISBN, *stored.ISBN)
	assert.True(t, isbn.Valid(*stored.ISBN))

	require.Len(t, recorder.records, 2)
	update := recorder.records[1]
	assert.Equal(t, audit.Change{
		Old: audit.String(originalISBN),
		New: audit.String(*stored.ISBN),
	}, update.Changes[FieldISBN])
}

/*
TestUpdateBook_NarrowTrigger: an identifier is never regenerated when the
primary author carries no nationality code, even though the embedded segment
can no longer be re-derived.
*/
func TestUpdateBook_NarrowTrigger(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	service, _ := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction", Authors: []BookAuthor{{AuthorID: "a1"}}}
	require.NoError(t, service.CreateBook(context.Background(), book))
	originalISBN := *book.ISBN

	// Nationality disappears from the primary author
	store.authors["a1"].Nationality = nil
	store.authors["a1"].NationalityID = nil

	edit := *book
	edit.Authors = nil
	edit.Title = "Dune (Revised)"
	require.NoError(t, service.UpdateBook(context.Background(), &edit))

	stored, _ := service.GetBook(context.Background(), book.ID)
	assert.Equal(t, originalISBN, *stored.ISBN)
}

/*
TestUpdateBook_ReorderRegenerates: swapping author order changes the primary
author; when the new primary carries a different code the identifier follows
and the authors string records the reorder.
*/
func TestUpdateBook_ReorderRegenerates(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	store.addAuthorRow("a2", "Kevin", "Anderson", "611")
	service, recorder := newTestService(store)

	book := &Book{
		Title:   "Hunters of Dune",
		GenreID: "g-fiction",
		Authors: []BookAuthor{{AuthorID: "a1"}, {AuthorID: "a2"}},
	}
	require.NoError(t, service.CreateBook(context.Background(), book))
	require.Equal(t, "600", isbn.ClassificationSegment(*book.ISBN))

	edit := *book
	edit.Authors = []BookAuthor{{AuthorID: "a2"}, {AuthorID: "a1"}}
	require.NoError(t, service.UpdateBook(context.Background(), &edit))

	stored, _ := service.GetBook(context.Background(), book.ID)
	assert.Equal(t, "611", isbn.ClassificationSegment(*stored.ISBN))

	update := recorder.records[len(recorder.records)-1]
	assert.Equal(t, audit.Change{
		Old: audit.String("Frank Herbert, Kevin Anderson"),
		New: audit.String("Kevin Anderson, Frank Herbert"),
	}, update.Changes[FieldAuthors])
}

/*
TestAssignIdentifier_WriteConflictRetry: a write-time uniqueness violation
triggers a full regeneration instead of failing the operation.
*/
func TestAssignIdentifier_WriteConflictRetry(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	store.setISBNConflicts = 2
	service, _ := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction", Authors: []BookAuthor{{AuthorID: "a1"}}}
	require.NoError(t, service.CreateBook(context.Background(), book))

	require.NotNil(t, book.ISBN)
	assert.Equal(t, 3, store.setISBNCalls)
}

/*
TestAssignIdentifier_ConflictBudgetExhausted: persistent write conflicts
eventually fail the operation with the duplicate classification.
*/
func TestAssignIdentifier_ConflictBudgetExhausted(t *testing.T) {
	store := newFakeStore()
	store.addAuthorRow("a1", "Frank", "Herbert", "600")
	store.setISBNConflicts = 1000
	service, _ := newTestService(store)

	book := &Book{Title: "Dune", GenreID: "g-fiction", Authors: []BookAuthor{{AuthorID: "a1"}}}
	err := service.CreateBook(context.Background(), book)

	require.Error(t, err)
	assert.True(t, dberr.IsDuplicate(err))
}

/*
TestActorAttribution: records carry the context actor, falling back to the
system actor when none is set.
*/
func TestActorAttribution(t *testing.T) {
	store := newFakeStore()
	service, recorder := newTestService(store)

	require.NoError(t, service.CreateBook(context.Background(), &Book{Title: "Dune", GenreID: "g-fiction"}))
	assert.Equal(t, ctxutil.SystemActor, recorder.records[0].ActorID)

	ctx := ctxutil.WithActor(context.Background(), "librarian-7")
	require.NoError(t, service.CreateBook(ctx, &Book{Title: "Dune Messiah", GenreID: "g-fiction"}))
	assert.Equal(t, "librarian-7", recorder.records[1].ActorID)
}

func TestGetHistory(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)
	ctx := context.Background()

	first := &Book{Title: "Dune", GenreID: "g-fiction"}
	require.NoError(t, service.CreateBook(ctx, first))
	require.NoError(t, service.CreateBook(ctx, &Book{Title: "Hyperion", GenreID: "g-fiction"}))

	first.Title = "Dune (1965)"
	require.NoError(t, service.UpdateBook(ctx, first))

	history, err := service.GetHistory(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 2, "only the book's own records, newest first")
	assert.Equal(t, audit.ActionUpdate, history[0].Action)
	assert.Equal(t, audit.ActionCreate, history[1].Action)
	assert.Equal(t, first.ID, history[0].EntityID)
}

/*
TestPrimaryClassificationCode covers the resolver's narrow rules.
*/
func TestPrimaryClassificationCode(t *testing.T) {
	herbert := &reference.Author{ID: "a1", FirstName: "Frank", LastName: "Herbert",
		Nationality: &reference.Nationality{Code: "600"}}
	anderson := &reference.Author{ID: "a2", FirstName: "Kevin", LastName: "Anderson"}

	t.Run("no memberships", func(t *testing.T) {
		code, ok := PrimaryClassificationCode(&Book{})
		assert.False(t, ok)
		assert.Empty(t, code)
	})

	t.Run("primary carries a code", func(t *testing.T) {
		book := &Book{Authors: []BookAuthor{
			{AuthorID: "a2", Position: 2, Author: anderson},
			{AuthorID: "a1", Position: 1, Author: herbert},
		}}
		code, ok := PrimaryClassificationCode(book)
		assert.True(t, ok)
		assert.Equal(t, "600", code)
	})

	t.Run("primary without a code is not overridden by later authors", func(t *testing.T) {
		book := &Book{Authors: []BookAuthor{
			{AuthorID: "a2", Position: 1, Author: anderson},
			{AuthorID: "a1", Position: 2, Author: herbert},
		}}
		_, ok := PrimaryClassificationCode(book)
		assert.False(t, ok)
	})

	t.Run("free-form codes are normalized", func(t *testing.T) {
		author := &reference.Author{ID: "a3", FirstName: "A", LastName: "B",
			Nationality: &reference.Nationality{Code: "6-1"}}
		book := &Book{Authors: []BookAuthor{{AuthorID: "a3", Position: 1, Author: author}}}

		code, ok := PrimaryClassificationCode(book)
		assert.True(t, ok)
		assert.Equal(t, "061", code)
	})
}
