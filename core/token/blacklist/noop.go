package blacklist

import (
	"context"
	"time"
)

// Noop is a blacklist that never revokes anything, for setups without a
// revocation store
type Noop struct{}

// NewNoop creates a noop blacklist
func NewNoop() Blacklist {
	return &Noop{}
}

func (n *Noop) Add(ctx context.Context, jti string, ttl time.Duration) error {
	return nil
}

func (n *Noop) AddSubject(ctx context.Context, subject string, issuedBefore time.Time, ttl time.Duration) error {
	return nil
}

func (n *Noop) Contains(ctx context.Context, jti, subject string, issuedAt time.Time) (bool, error) {
	return false, nil
}
