package session

import "errors"

var (
	// ErrNotFound means the session id has no live record. Expired and
	// terminated sessions report this on any lookup after removal.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired means the session hit its idle or absolute timeout; the
	// record has been removed
	ErrExpired = errors.New("session: expired")

	// ErrWeakEntropy means id generation repeatedly produced bytes failing
	// the minimum-entropy self-check
	ErrWeakEntropy = errors.New("session: generated id failed entropy check")

	// ErrEmptyUserID rejects session creation without a subject
	ErrEmptyUserID = errors.New("session: user id is required")
)
