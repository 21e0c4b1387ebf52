package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultLookupTimeout = 200 * time.Millisecond

// Guard wraps a Blacklist with a bounded lookup timeout and coalesces
// concurrent lookups for the same token. The revocation store is the only
// point where a validation may suspend, so its latency must be capped.
type Guard struct {
	next    Blacklist
	timeout time.Duration
	group   singleflight.Group
}

// GuardOption configures a Guard
type GuardOption func(*Guard)

// WithLookupTimeout sets the per-lookup timeout (default 200ms)
func WithLookupTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGuard wraps a blacklist with timeout protection
func NewGuard(next Blacklist, opts ...GuardOption) *Guard {
	g := &Guard{
		next:    next,
		timeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Add implements Blacklist
func (g *Guard) Add(ctx context.Context, jti string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.translate(g.next.Add(ctx, jti, ttl))
}

// AddSubject implements Blacklist
func (g *Guard) AddSubject(ctx context.Context, subject string, issuedBefore time.Time, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.translate(g.next.AddSubject(ctx, subject, issuedBefore, ttl))
}

// Contains implements Blacklist. A timed-out or failed lookup yields
// ErrUnavailable; the caller resolves it per its fail-open/fail-closed
// policy. Concurrent lookups for the same jti share one store round trip.
func (g *Guard) Contains(ctx context.Context, jti, subject string, issuedAt time.Time) (bool, error) {
	key := fmt.Sprintf("%s|%s|%d", jti, subject, issuedAt.Unix())

	v, err, _ := g.group.Do(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return g.next.Contains(lookupCtx, jti, subject, issuedAt)
	})
	if err != nil {
		return false, g.translate(err)
	}

	return v.(bool), nil
}

func (g *Guard) translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ErrUnavailable, err)
	}
	if errors.Is(err, ErrEmptyJTI) {
		return err
	}
	// Any other store failure is treated as unavailability, not as a
	// revocation verdict
	return errors.Join(ErrUnavailable, err)
}
