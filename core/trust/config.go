package trust

import (
	"time"

	"github.com/kochabx/trustcore/core/cookie"
	"github.com/kochabx/trustcore/core/rate"
	"github.com/kochabx/trustcore/core/session"
	"github.com/kochabx/trustcore/core/tag"
	"github.com/kochabx/trustcore/core/token"
	storeredis "github.com/kochabx/trustcore/store/redis"
)

// Config is the root configuration of the trust core. Subsystem sections
// carry their own defaults; loading through config.FileLoader applies them
// and validates the result.
type Config struct {
	Token   token.Config   `json:"token"`
	Session session.Config `json:"session"`
	Cookie  cookie.Config  `json:"cookie"`

	// RateRules replaces the default operation classes when set
	RateRules []rate.Rule `json:"rateRules"`

	// Redis, when set, backs the rate limiter and the token blacklist with a
	// shared redis store so revocations and counters are visible across
	// instances. Explicit WithLimiter/WithBlacklist options still win.
	Redis *storeredis.Config `json:"redis"`

	// BlacklistTimeoutMs bounds the revocation lookup, the only suspension
	// point on the validation path
	BlacklistTimeoutMs int64 `json:"blacklistTimeoutMs" default:"200"`

	// DegradedRiskWeight is added to the reported risk score when a token
	// passes fail-open while the revocation store is down
	DegradedRiskWeight int `json:"degradedRiskWeight" default:"20"`

	// SweepSpec is the janitor schedule
	SweepSpec string `json:"sweepSpec" default:"@every 5m"`

	// MFAIssuer labels provisioning URIs in authenticator apps
	MFAIssuer string `json:"mfaIssuer" default:"TrustCore"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}

// BlacklistTimeout returns the lookup bound as a duration
func (c *Config) BlacklistTimeout() time.Duration {
	return time.Duration(c.BlacklistTimeoutMs) * time.Millisecond
}

func (c *Config) rateRules() []rate.Rule {
	if len(c.RateRules) > 0 {
		return c.RateRules
	}
	return rate.DefaultRules()
}
