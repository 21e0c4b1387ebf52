package token

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/kochabx/trustcore/core/identity"
)

// Claims is the claim set the trust core understands. It embeds the
// registered claims (iss, aud, sub, exp, iat, jti) and adds the platform
// extensions.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	// Scope marks the platform context the token was issued for; protected
	// routes require it to match the configured value
	Scope string `json:"scope,omitempty"`
	// MFA is set by the issuer once the subject completed a second factor
	MFA bool `json:"mfa,omitempty"`
}

// ParsedRole returns the claim role parsed into the closed enum
func (c *Claims) ParsedRole() (identity.Role, error) {
	if c.Role == "" {
		return identity.RoleGuest, nil
	}
	return identity.ParseRole(c.Role)
}

// Tier is the trust level derived from validated claims
type Tier int

const (
	// TierNormal grants regular access
	TierNormal Tier = iota
	// TierStepUp means the token is valid but the subject must complete
	// step-up authentication before sensitive operations
	TierStepUp
)

func (t Tier) String() string {
	if t == TierStepUp {
		return "step-up"
	}
	return "normal"
}

// Result is a successful validation outcome
type Result struct {
	Claims *Claims
	Role   identity.Role
	Tier   Tier
	// Degraded is set when the revocation store could not be consulted and
	// the fail-open policy let the token pass
	Degraded bool
}
