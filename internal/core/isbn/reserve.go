// Copyright (c) 2026 OpenShelf. All rights reserved.

package isbn

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openshelf/openshelf/internal/platform/constants"
)

// ReservingOracle decorates a registry [Oracle] with a short-lived Redis
// reservation on every candidate it reports as free.
//
// # Why
//
// The registry alone cannot prevent two concurrent generators from both
// observing "not taken" for the same candidate before either writes it.
// Reserving the candidate via SET-NX closes that window: the second observer
// sees the reservation and treats the candidate as taken, drawing a fresh
// one instead. The reservation expires on its own, so an operation that
// fails after generation never leaks the candidate permanently.
//
// The write-time uniqueness constraint of the registry remains the final
// arbiter; the reservation only makes the write-time conflict path rare.
type ReservingOracle struct {
	inner  Oracle
	client *redis.Client
	ttl    time.Duration
}

// NewReservingOracle wraps inner with a Redis reservation layer.
// A non-positive ttl falls back to the platform default.
func NewReservingOracle(inner Oracle, client *redis.Client, ttl time.Duration) *ReservingOracle {
	if ttl <= 0 {
		ttl = constants.DefaultISBNReserveTTL
	}
	return &ReservingOracle{inner: inner, client: client, ttl: ttl}
}

// Exists implements [Oracle].
//
// A candidate is reported as taken when the registry knows it OR another
// in-flight operation holds its reservation.
func (o *ReservingOracle) Exists(ctx context.Context, candidate string) (bool, error) {
	taken, err := o.inner.Exists(ctx, candidate)
	if err != nil || taken {
		return taken, err
	}

	reserved, err := o.client.SetNX(ctx, constants.RedisPrefixISBNReserve+candidate, 1, o.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("isbn: candidate reservation failed: %w", err)
	}

	// Someone else reserved it first: treat as taken so the generator redraws.
	return !reserved, nil
}
