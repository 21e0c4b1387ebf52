package cookie

import (
	"crypto/subtle"
	"net/http"
)

// VerifyCSRF compares the CSRF request header against the CSRF cookie in
// constant time. Unlike IP or user-agent anomalies this is a hard failure,
// never a risk-score increment.
func (c *Codec) VerifyCSRF(r *http.Request) error {
	cookie, err := r.Cookie(c.config.CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return ErrCSRFMismatch
	}

	header := r.Header.Get(c.config.CSRFHeaderName)
	if header == "" {
		return ErrCSRFMismatch
	}

	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}
