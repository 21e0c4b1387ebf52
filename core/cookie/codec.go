// Package cookie encodes and verifies the signed cookie triple carrying a
// session: the HttpOnly session id, its HMAC-SHA256 signature, and an
// independent CSRF token readable by client script.
package cookie

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/kochabx/trustcore/core/crypto/hmac"
)

const (
	sessionIDHexLen = 32
	signatureHexLen = 64
	csrfTokenBytes  = 32
)

// Bundle is the cookie triple for one session
type Bundle struct {
	Session   *http.Cookie
	Signature *http.Cookie
	CSRF      *http.Cookie
}

// Cookies returns the bundle as a slice, in set order
func (b *Bundle) Cookies() []*http.Cookie {
	return []*http.Cookie{b.Session, b.Signature, b.CSRF}
}

// CSRFToken returns the token value clients must echo in the CSRF header
func (b *Bundle) CSRFToken() string {
	return b.CSRF.Value
}

// SessionLookup answers whether a session id has a live record
type SessionLookup func(sessionID string) bool

// Codec signs and verifies session cookies
type Codec struct {
	config *Config
}

// NewCodec creates a codec from config. The secret must be at least 32
// bytes.
func NewCodec(config *Config) (*Codec, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.init(); err != nil {
		return nil, err
	}
	if len(config.Secret) < 32 {
		return nil, hmac.ErrEmptySecret
	}
	return &Codec{config: config}, nil
}

// Encode produces the cookie triple for a session id. The CSRF token is an
// independent random value, never derived from the session id.
func (c *Codec) Encode(sessionID string) (*Bundle, error) {
	if !isHex(sessionID, sessionIDHexLen) {
		return nil, ErrBadFormat
	}

	signature, err := hmac.Sign(c.config.Secret, sessionID)
	if err != nil {
		return nil, err
	}
	csrfToken, err := newCSRFToken()
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Session:   c.newCookie(c.config.SessionCookieName, sessionID, true),
		Signature: c.newCookie(c.config.SignatureCookieName, signature, true),
		// Client script must read this one to echo it in the CSRF header
		CSRF: c.newCookie(c.config.CSRFCookieName, csrfToken, false),
	}, nil
}

// Decode extracts and verifies the session id from a request's cookies.
// Checks run in order: presence, session id format, signature, then session
// existence. The first failure wins.
func (c *Codec) Decode(r *http.Request, lookup SessionLookup) (string, error) {
	sessionCookie, err := r.Cookie(c.config.SessionCookieName)
	if err != nil {
		return "", ErrMissingCookie
	}
	signatureCookie, err := r.Cookie(c.config.SignatureCookieName)
	if err != nil {
		return "", ErrMissingCookie
	}
	if _, err := r.Cookie(c.config.CSRFCookieName); err != nil {
		return "", ErrMissingCookie
	}

	sessionID := sessionCookie.Value
	if !isHex(sessionID, sessionIDHexLen) {
		return "", ErrBadFormat
	}

	if err := hmac.Verify(c.config.Secret, sessionID, signatureCookie.Value); err != nil {
		return "", ErrTamperedCookie
	}

	if lookup != nil && !lookup(sessionID) {
		return "", ErrUnknownSession
	}

	return sessionID, nil
}

// Cleanup returns expired cookies that clear the triple on the client
func (c *Codec) Cleanup() []*http.Cookie {
	expire := func(name string, httpOnly bool) *http.Cookie {
		cookie := c.newCookie(name, "", httpOnly)
		cookie.MaxAge = -1
		return cookie
	}
	return []*http.Cookie{
		expire(c.config.SessionCookieName, true),
		expire(c.config.SignatureCookieName, true),
		expire(c.config.CSRFCookieName, false),
	}
}

// CSRFHeader returns the configured CSRF request header name
func (c *Codec) CSRFHeader() string {
	return c.config.CSRFHeaderName
}

func (c *Codec) newCookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.config.Path,
		Domain:   c.config.Domain,
		MaxAge:   c.config.MaxAgeSeconds,
		Secure:   c.config.secure(),
		HttpOnly: httpOnly,
		SameSite: http.SameSiteStrictMode,
	}
}

func newCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isHex(s string, length int) bool {
	if len(s) != length {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
