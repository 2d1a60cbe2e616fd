// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
Package reference manages the catalog's master data: nationalities, genres
and authors.

It handles the reference rows that books link against, including the
three-digit nationality codes that seed identifier generation and the
authors whose catalog position gates nationality edits.

# Core Responsibility

  - Master Data: Defines the [Nationality], [Genre] and [Author] entities.
  - Classification Codes: Owns the digit codes consumed by identifier generation.
  - Integrity: Locks an author's nationality while the author leads any book.
*/
package reference

import (
	"fmt"
	"time"
)

// # Core Entities

// Nationality is a country-of-origin reference row. Its three-digit code
// feeds the classification segment of generated book identifiers.
type Nationality struct {
	ID        string    `json:"id"` // UUIDv7
	Name      string    `json:"name"`
	Code      string    `json:"code"` // exactly three digits
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName renders the nationality for labels and audit values.
func (n *Nationality) DisplayName() string { return n.Name }

// Genre is a literary genre reference row.
type Genre struct {
	ID        string    `json:"id"` // UUIDv7
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName renders the genre for labels and audit values.
func (g *Genre) DisplayName() string { return g.Name }

// Author is a book contributor.
//
// Nationality is optional; an author without one contributes no
// classification code to identifier generation.
type Author struct {
	ID            string       `json:"id"` // UUIDv7
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	NationalityID *string      `json:"nationality_id,omitempty"`
	Nationality   *Nationality `json:"nationality,omitempty"` // Hydrated relation
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// DisplayName renders the author as "First Last" for labels and audit values.
func (a *Author) DisplayName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

// CountryCode returns the author's three-digit nationality code, or ""
// when no nationality is attached.
func (a *Author) CountryCode() string {
	if a.Nationality == nil {
		return ""
	}
	return a.Nationality.Code
}

// Displayable is satisfied by every reference entity that can appear in an
// audit value or log line.
type Displayable interface {
	DisplayName() string
}

// # Field Identifiers

const (
	FieldName          = "name"
	FieldCode          = "code"
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldNationalityID = "nationality_id"
)
