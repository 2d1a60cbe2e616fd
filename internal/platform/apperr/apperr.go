// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
Package apperr defines the centralized error handling framework for OpenShelf.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and the responses surfaced by the embedding admin application.

Architecture:

  - AppError: A struct containing a machine-readable Code and a user-friendly message.
  - Details: Optional per-field validation failures accumulated by the validate package.
  - Cause: The underlying error, preserved for server-side logging only.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent handling by callers.
*/
package apperr

import (
	"errors"
)

// AppError is the canonical error type for the OpenShelf core.
//
// It carries a machine-readable code, a client-safe message, and an optional
// slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never surfaced to
// end users, to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to surface to the caller.
	Message string `json:"error"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Caller Errors

// NotFound creates a NOT_FOUND [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Book") // Returns "Book not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: resource + " not found",
	}
}

// Conflict creates a CONFLICT [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: msg,
	}
}

// ValidationError creates a VALIDATION_ERROR [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: msg,
		Details: details,
	}
}

// # Internal Errors

// Internal creates an INTERNAL_ERROR [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never surfaced to end users.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "An unexpected error occurred",
		Cause:   cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
