package token

import (
	"fmt"
	"time"
)

// Kind enumerates the distinct validation failure classes. Every failure is
// reported as exactly one kind so callers can log and alert precisely while
// the client-facing reply stays uniformly generic.
type Kind int

const (
	KindMalformed Kind = iota + 1
	KindAlgorithmRejected
	KindUnknownKey
	KindBadSignature
	KindClaimInvalid
	KindExpired
	KindRevoked
	KindPolicyViolation
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindMalformed:         "malformed",
	KindAlgorithmRejected: "algorithm_rejected",
	KindUnknownKey:        "unknown_key",
	KindBadSignature:      "bad_signature",
	KindClaimInvalid:      "claim_invalid",
	KindExpired:           "expired",
	KindRevoked:           "revoked",
	KindPolicyViolation:   "policy_violation",
	KindRateLimited:       "rate_limited",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a typed validation failure. The detail is for operator logs only
// and never contains token material.
type Error struct {
	Kind       Kind
	RetryAfter time.Duration // set for KindRateLimited
	detail     string
}

func (e *Error) Error() string {
	if e.detail == "" {
		return "token: " + e.Kind.String()
	}
	return fmt.Sprintf("token: %s: %s", e.Kind, e.detail)
}

// Is matches any *Error with the same kind, so sentinel comparisons work on
// instances carrying detail
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	return ok && te.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, detail: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons
var (
	ErrMalformed         = &Error{Kind: KindMalformed}
	ErrAlgorithmRejected = &Error{Kind: KindAlgorithmRejected}
	ErrUnknownKey        = &Error{Kind: KindUnknownKey}
	ErrBadSignature      = &Error{Kind: KindBadSignature}
	ErrClaimInvalid      = &Error{Kind: KindClaimInvalid}
	ErrExpired           = &Error{Kind: KindExpired}
	ErrRevoked           = &Error{Kind: KindRevoked}
	ErrPolicyViolation   = &Error{Kind: KindPolicyViolation}
	ErrRateLimited       = &Error{Kind: KindRateLimited}
)
