// Copyright (c) 2026 OpenShelf. All rights reserved.

// Package pointer provides small generic helpers for optional values.
//
// Nullable catalog fields (cover key, film title, ISBN) are modeled as
// pointers; these helpers remove the boilerplate of taking the address of a
// literal or safely dereferencing a possibly-nil pointer.
package pointer

// To returns a pointer to the provided value.
//
// Useful when assigning a literal to an optional field, e.g.
// pointer.To("The Green Mile").
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
