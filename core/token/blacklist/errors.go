package blacklist

import "errors"

var (
	// ErrUnavailable marks a lookup that could not complete within its
	// timeout. Callers resolve it per their fail-open/fail-closed policy.
	ErrUnavailable = errors.New("blacklist: store unavailable")

	ErrEmptyJTI = errors.New("blacklist: jti cannot be empty")
)
