package token

import (
	"time"

	"github.com/kochabx/trustcore/core/tag"
)

// VerificationKey is an HMAC key addressable by kid
type VerificationKey struct {
	ID     string `json:"id" validate:"required"`
	Secret string `json:"secret" validate:"min=16"`
}

// Config holds token validation configuration
type Config struct {
	// Issuer and Audience must equal the values the upstream issuer stamps
	Issuer   string `json:"issuer" validate:"required"`
	Audience string `json:"audience" validate:"required"`

	// AllowedAlgorithms is the signing-method allow-list. "none" is always
	// rejected regardless of this list.
	AllowedAlgorithms []string `json:"allowedAlgorithms" default:"HS256,HS512"`

	// ClockSkewSeconds is the tolerated clock drift for exp/iat checks
	ClockSkewSeconds int64 `json:"clockSkewSeconds" default:"60"`

	// MaxLifetimeSeconds caps exp-iat, a defense against very-long-lived
	// forged tokens
	MaxLifetimeSeconds int64 `json:"maxLifetimeSeconds" default:"86400"`

	// RequiredScope must be present in the scope claim for protected
	// routes, when set
	RequiredScope string `json:"requiredScope"`

	// FailOpen controls behavior when the revocation store is unreachable:
	// false (default) denies the token, true lets it pass degraded
	FailOpen bool `json:"failOpen"`

	// Keys are the verification keys; the first entry is the primary key
	// used when a token carries no kid
	Keys []VerificationKey `json:"keys" validate:"min=1,dive"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}

// ClockSkew returns the skew as a duration
func (c *Config) ClockSkew() time.Duration {
	return time.Duration(c.ClockSkewSeconds) * time.Second
}

// MaxLifetime returns the lifetime cap as a duration
func (c *Config) MaxLifetime() time.Duration {
	return time.Duration(c.MaxLifetimeSeconds) * time.Second
}

func (c *Config) algorithmAllowed(alg string) bool {
	for _, allowed := range c.AllowedAlgorithms {
		if alg == allowed {
			return true
		}
	}
	return false
}

func (c *Config) keyFor(kid string) (VerificationKey, bool) {
	if kid == "" {
		return c.Keys[0], true
	}
	for _, key := range c.Keys {
		if key.ID == kid {
			return key, true
		}
	}
	return VerificationKey{}, false
}
