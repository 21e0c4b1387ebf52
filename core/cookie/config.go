package cookie

import (
	"time"

	"github.com/kochabx/trustcore/core/tag"
)

// Config holds cookie naming and attribute configuration
type Config struct {
	// Secret signs the session id cookie
	Secret string `json:"secret" validate:"min=32"`

	SessionCookieName   string `json:"sessionCookieName" default:"tc_session"`
	SignatureCookieName string `json:"signatureCookieName" default:"tc_sig"`
	CSRFCookieName      string `json:"csrfCookieName" default:"tc_csrf"`

	// CSRFHeaderName is the request header clients echo the CSRF cookie in
	CSRFHeaderName string `json:"csrfHeaderName" default:"X-CSRF-Token"`

	// MaxAgeSeconds bounds cookie lifetime; aligned with the session
	// absolute timeout
	MaxAgeSeconds int `json:"maxAgeSeconds" default:"28800"`

	Path   string `json:"path" default:"/"`
	Domain string `json:"domain"`

	// Secure is dropped only in local development
	Secure *bool `json:"secure" default:"true"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) secure() bool {
	return c.Secure == nil || *c.Secure
}

// MaxAge returns the cookie lifetime as a duration
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}
