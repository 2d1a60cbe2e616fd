// Copyright (c) 2026 OpenShelf. All rights reserved.

package isbn

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/openshelf/openshelf/internal/platform/constants"
)

// ErrRetriesExhausted reports that the uniqueness search ran out of attempts.
//
// It is intentionally fatal for the current operation and surfaced to the
// caller rather than silently retried further, since it indicates the
// identifier space for the classification segment is saturated.
var ErrRetriesExhausted = fmt.Errorf("isbn: uniqueness search exhausted its retry budget")

// # Registry Oracle

// Oracle answers whether a candidate identifier has already been issued.
//
// Implementations must reflect all previously committed identifiers for the
// entity type at call time. The production oracle is backed by the catalog
// registry (Postgres), optionally decorated by [ReservingOracle] for
// concurrent multi-writer deployments.
type Oracle interface {
	Exists(ctx context.Context, candidate string) (bool, error)
}

// OracleFunc adapts a plain function to the [Oracle] interface.
type OracleFunc func(ctx context.Context, candidate string) (bool, error)

// Exists implements [Oracle].
func (f OracleFunc) Exists(ctx context.Context, candidate string) (bool, error) {
	return f(ctx, candidate)
}

// # Generator

// Generator synthesizes unique ISBN-13 identifiers seeded from a
// classification code.
//
// Collision probability is astronomically low per draw (a million publication
// segments × two prefixes), so bounded random retry is preferable to a
// sequential counter, which would require a monotonic-counter service and
// central coordination; random retry needs only a membership test.
type Generator struct {
	oracle   Oracle
	maxTries int
}

// Option customizes a [Generator].
type Option func(*Generator)

// WithMaxTries overrides the retry budget of the uniqueness search.
// Non-positive values fall back to the default.
func WithMaxTries(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTries = n
		}
	}
}

// NewGenerator constructs a [Generator] backed by the given registry oracle.
func NewGenerator(oracle Oracle, opts ...Option) *Generator {
	g := &Generator{
		oracle:   oracle,
		maxTries: constants.DefaultISBNMaxTries,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate synthesizes a unique identifier for the given classification code.
//
// The code is normalized first; a normalized code that fails [IsAllowed] is
// silently substituted with the [SentinelCode] — unrecognized or disallowed
// codes never block generation, they degrade to the sentinel.
//
// Up to the retry budget, a candidate is assembled from a uniformly random
// prefix, the classification code, a uniformly random zero-padded 6-digit
// publication segment and the check digit over the first 12 characters. The
// first candidate the oracle reports as free is returned. Exhausting the
// budget fails with [ErrRetriesExhausted]; oracle failures propagate as-is.
func (g *Generator) Generate(ctx context.Context, classificationCode string) (string, error) {
	code := Normalize(classificationCode)
	if !IsAllowed(code) {
		code = SentinelCode
	}

	for try := 0; try < g.maxTries; try++ {
		prefix := Prefixes[rand.IntN(len(Prefixes))]
		publication := fmt.Sprintf("%06d", rand.IntN(1_000_000))

		first12 := prefix + code + publication
		check, err := CheckDigit(first12)
		if err != nil {
			// Unreachable with well-formed segments; surface it anyway.
			return "", err
		}
		candidate := first12 + check

		taken, err := g.oracle.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("isbn: registry lookup failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w (%d tries)", ErrRetriesExhausted, g.maxTries)
}
