// Package ratelimit throttles RFC authentication attempts so a credential
// cannot be guessed by brute force.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Store counts hits in fixed windows.
type Store interface {
	// Increment records a hit for key and returns the count in the current
	// window and when that window ends.
	Increment(ctx context.Context, key string, length time.Duration, now time.Time) (int, time.Time, error)
}

// Limiter allows Limit attempts per key per Window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

func NewLimiter(store Store, limit int, window time.Duration) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate limit store is required")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limit and window must be positive")
	}
	return &Limiter{store: store, limit: limit, window: window}, nil
}

// Check counts an attempt for key at now.
func (l *Limiter) Check(ctx context.Context, key string, now time.Time) (Result, error) {
	count, resetAt, err := l.store.Increment(ctx, key, l.window, now)
	if err != nil {
		return Result{}, err
	}
	result := Result{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-count, 0),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = max(int(resetAt.Sub(now).Seconds()), 1)
	}
	return result, nil
}
