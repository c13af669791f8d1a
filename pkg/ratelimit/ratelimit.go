// Package ratelimit throttles keyed actions with a sliding window over
// recorded request timestamps. The send endpoints use it to cap how often
// a single coordinator can trigger notification fan-outs.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStoreRequired = errors.New("ratelimit: store is required")
	ErrInvalidLimit  = errors.New("ratelimit: limit must be positive")
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")
	ErrKeyRequired   = errors.New("ratelimit: key is required")
)

// Result describes the outcome of a limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before trying again.
// Zero when the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter answers whether a keyed action may proceed right now.
type Limiter interface {
	// Allow consumes one slot for the key if the limit permits.
	Allow(ctx context.Context, key string) (*Result, error)

	// AllowN consumes n slots at once; all or nothing.
	AllowN(ctx context.Context, key string, n int) (*Result, error)

	// Status reports the current state without consuming anything.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset forgets all recorded activity for the key.
	Reset(ctx context.Context, key string) error
}

// Store persists per-key request timestamps for the sliding window.
type Store interface {
	// RecordIfAllowed atomically records n timestamps at `at` when doing
	// so keeps the key at or under limit inside the window. It returns
	// whether they were recorded and the in-window count afterwards.
	RecordIfAllowed(ctx context.Context, key string, at time.Time, window time.Duration, limit, n int) (bool, int, error)

	// CountInWindow reports how many timestamps fall inside the window
	// ending now.
	CountInWindow(ctx context.Context, key string, window time.Duration) (int, error)

	// Delete drops all recorded state for the key.
	Delete(ctx context.Context, key string) error
}
