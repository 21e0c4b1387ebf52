// Package hmac signs and verifies short payloads with HMAC-SHA256. Used for
// cookie integrity, where the signature travels alongside the value it
// covers.
package hmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

var (
	// ErrEmptySecret rejects signing or verifying without a key
	ErrEmptySecret = errors.New("hmac: secret cannot be empty")

	// ErrMismatch means the signature does not cover the payload; treat it
	// as tamper evidence, not staleness
	ErrMismatch = errors.New("hmac: signature mismatch")
)

// Sign returns the hex-encoded HMAC-SHA256 of payload
func Sign(secret, payload string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the signature and compares in constant time
func Verify(secret, payload, signature string) error {
	expected, err := Sign(secret, payload)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrMismatch
	}
	return nil
}
