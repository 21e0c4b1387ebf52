package trust

import (
	"net/http"
	"time"

	"github.com/kochabx/trustcore/core/identity"
)

// Reason classifies a decision for logs and metrics. It is internal detail:
// clients only ever see the status code and a generic message.
type Reason string

const (
	ReasonOK              Reason = "ok"
	ReasonNoCredentials   Reason = "no_credentials"
	ReasonInvalidToken    Reason = "invalid_token"
	ReasonTokenRevoked    Reason = "token_revoked"
	ReasonSessionExpired  Reason = "session_expired"
	ReasonSessionNotFound Reason = "session_not_found"
	ReasonTamperedCookie  Reason = "tampered_cookie"
	ReasonMalformedCookie Reason = "malformed_cookie"
	ReasonCSRFMismatch    Reason = "csrf_mismatch"
	ReasonPolicyViolation Reason = "policy_violation"
	ReasonRateLimited     Reason = "rate_limited"
	ReasonInternal        Reason = "internal_error"
)

// Request is the authentication input for one incoming request
type Request struct {
	// BearerToken is the value after "Bearer " in the Authorization header.
	// When set, the token flow is used and cookies are ignored.
	BearerToken string

	// CookieHeader is the raw Cookie request header for the session flow
	CookieHeader string

	// CSRFToken is the echoed CSRF header value; checked when RequireCSRF
	// is set (mutating requests)
	CSRFToken   string
	RequireCSRF bool

	ClientIP  string
	UserAgent string
	Now       time.Time

	// Protected routes additionally enforce the configured token scope
	Protected bool
}

// Decision is the single answer downstream routing and permission code
// consumes
type Decision struct {
	OK     bool
	UserID string
	Role   identity.Role

	// RiskScore is the session's accumulated anomaly score; always zero for
	// the stateless bearer flow
	RiskScore int

	// MFARequired means the request is authenticated but sensitive
	// operations must wait for step-up verification
	MFARequired bool

	// SessionID is set for the cookie flow
	SessionID string

	// Degraded means the revocation store could not be consulted and the
	// fail-open policy applied
	Degraded bool

	Reason     Reason
	RetryAfter time.Duration
}

// StatusCode maps the decision to an HTTP status. Denials never reveal
// which check failed.
func (d *Decision) StatusCode() int {
	if d.OK {
		return http.StatusOK
	}
	switch d.Reason {
	case ReasonRateLimited:
		return http.StatusTooManyRequests
	case ReasonPolicyViolation, ReasonCSRFMismatch:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// RetryAfterSeconds returns the Retry-After header value, zero unless rate
// limited
func (d *Decision) RetryAfterSeconds() int {
	if d.Reason != ReasonRateLimited || d.RetryAfter <= 0 {
		return 0
	}
	secs := int(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}
