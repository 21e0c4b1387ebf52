package cookie

import "errors"

var (
	// ErrMissingCookie means one of the three cookies is absent
	ErrMissingCookie = errors.New("cookie: required cookie missing")

	// ErrBadFormat means the session id cookie is not fixed-length hex
	ErrBadFormat = errors.New("cookie: malformed session id")

	// ErrTamperedCookie means the signature does not cover the session id.
	// This is tamper evidence, not staleness, and is logged accordingly.
	ErrTamperedCookie = errors.New("cookie: signature mismatch")

	// ErrUnknownSession means the signed session id has no live record
	ErrUnknownSession = errors.New("cookie: session not found")

	// ErrCSRFMismatch means the CSRF header does not match the CSRF cookie
	ErrCSRFMismatch = errors.New("cookie: csrf token mismatch")
)
