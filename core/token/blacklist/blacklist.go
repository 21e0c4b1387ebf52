// Package blacklist tracks revoked tokens. Entries are write-once and
// self-expire with the remaining lifetime of the token they revoke.
package blacklist

import (
	"context"
	"time"
)

// Blacklist answers whether a token has been revoked
type Blacklist interface {
	// Add revokes a single token by jti. The ttl should match the token's
	// remaining lifetime.
	Add(ctx context.Context, jti string, ttl time.Duration) error

	// AddSubject revokes every token of a subject issued before the marker
	AddSubject(ctx context.Context, subject string, issuedBefore time.Time, ttl time.Duration) error

	// Contains reports whether the token identified by jti, or covered by a
	// subject marker given its issue time, is revoked
	Contains(ctx context.Context, jti, subject string, issuedAt time.Time) (bool, error)
}
