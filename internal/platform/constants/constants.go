// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default retry budgets, identifier composition rules and cross-cutting
keys that are shared between different layers of the system.

Categories:

  - Identifier Generation: retry budgets and reservation TTLs.
  - Database Schemas: logical schema names used by the storage layer.
  - Redis Prefixes: key taxonomy for the reservation cache.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "openshelf"
	AppVersion = "0.1.0-dev"
)

// # Identifier Generation

const (
	// DefaultISBNMaxTries is the retry budget for the uniqueness search.
	// Exhausting it means the identifier space for a classification segment
	// is saturated, which is surfaced as a fatal error per operation.
	DefaultISBNMaxTries = 5000

	// DefaultISBNReserveTTL is how long a drawn candidate stays reserved in
	// Redis before the reservation lapses. It only needs to outlive the
	// window between the uniqueness check and the committed write.
	DefaultISBNReserveTTL = 2 * time.Minute

	// ISBNAssignAttempts bounds how often a write-time uniqueness violation
	// triggers a full regeneration before the operation fails.
	ISBNAssignAttempts = 3
)

// # Database Schemas

const (
	SchemaRef     = "ref"
	SchemaCatalog = "catalog"
	SchemaSystem  = "system"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixISBNReserve = "isbn:reserve:"
)
