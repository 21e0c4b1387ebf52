// Package trust is the decision façade over token validation, session
// lifecycle, cookie integrity and rate limiting. Downstream routing and
// permission code consumes it through a single question: is this request
// authenticated, as whom, at what risk, and is it within limits.
package trust

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kochabx/trustcore/core/auth/mfa"
	"github.com/kochabx/trustcore/core/cookie"
	"github.com/kochabx/trustcore/core/rate"
	"github.com/kochabx/trustcore/core/session"
	"github.com/kochabx/trustcore/core/token"
	"github.com/kochabx/trustcore/core/token/blacklist"
	"github.com/kochabx/trustcore/log"
	storeredis "github.com/kochabx/trustcore/store/redis"
)

// Core wires the trust subsystems behind the decision interface. Construct
// one per process and share it; all methods are safe for concurrent use.
type Core struct {
	config    *Config
	logger    *log.Logger
	validator *token.Validator
	sessions  *session.Store
	codec     *cookie.Codec
	limiter   rate.Limiter
	blacklist blacklist.Blacklist
	// blacklistRaw is the unguarded backend, kept for janitor purges
	blacklistRaw blacklist.Blacklist
	redis        *storeredis.Client
	totp         *mfa.Authenticator
	metrics      *metrics
	janitor      *janitor
}

// Option configures a Core
type Option func(*coreOptions)

type coreOptions struct {
	logger     *log.Logger
	limiter    rate.Limiter
	blacklist  blacklist.Blacklist
	totp       *mfa.Authenticator
	registerer prometheus.Registerer
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(o *coreOptions) { o.logger = logger }
}

// WithLimiter replaces the default in-memory fixed-window limiter, for
// multi-instance deployments backed by redis
func WithLimiter(limiter rate.Limiter) Option {
	return func(o *coreOptions) { o.limiter = limiter }
}

// WithBlacklist replaces the default in-memory blacklist. The Core wraps it
// in a timeout guard either way.
func WithBlacklist(bl blacklist.Blacklist) Option {
	return func(o *coreOptions) { o.blacklist = bl }
}

// WithTOTP replaces the default step-up authenticator
func WithTOTP(totp *mfa.Authenticator) Option {
	return func(o *coreOptions) { o.totp = totp }
}

// WithRegisterer sets the prometheus registerer for the core's metrics
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *coreOptions) { o.registerer = reg }
}

// New assembles a Core from config
func New(config *Config, opts ...Option) (*Core, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.init(); err != nil {
		return nil, err
	}

	options := &coreOptions{
		logger:     log.G,
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(options)
	}

	var redisClient *storeredis.Client
	if config.Redis != nil {
		var err error
		redisClient, err = storeredis.New(config.Redis, options.logger)
		if err != nil {
			return nil, err
		}
	}
	fail := func(err error) (*Core, error) {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, err
	}

	limiter := options.limiter
	if limiter == nil {
		var err error
		if redisClient != nil {
			limiter, err = rate.NewRedisLimiter(redisClient, config.rateRules())
		} else {
			limiter, err = rate.NewFixedWindowLimiter(config.rateRules())
		}
		if err != nil {
			return fail(err)
		}
	}

	bl := options.blacklist
	if bl == nil {
		if redisClient != nil {
			bl = blacklist.NewRedis(redisClient)
		} else {
			bl = blacklist.NewMemory()
		}
	}
	guarded := blacklist.NewGuard(bl, blacklist.WithLookupTimeout(config.BlacklistTimeout()))

	validator, err := token.NewValidator(&config.Token, guarded,
		token.WithLogger(options.logger),
		token.WithLimiter(limiter),
	)
	if err != nil {
		return fail(err)
	}

	sessions, err := session.NewStore(&config.Session, session.WithLogger(options.logger))
	if err != nil {
		return fail(err)
	}

	codec, err := cookie.NewCodec(&config.Cookie)
	if err != nil {
		sessions.Close()
		return fail(err)
	}

	totp := options.totp
	if totp == nil {
		totp = mfa.New()
	}

	c := &Core{
		config:       config,
		logger:       options.logger,
		validator:    validator,
		sessions:     sessions,
		codec:        codec,
		limiter:      limiter,
		blacklist:    guarded,
		blacklistRaw: bl,
		redis:        redisClient,
		totp:         totp,
	}
	c.metrics = newMetrics(options.registerer, sessions)
	c.janitor, err = newJanitor(c, config.SweepSpec)
	if err != nil {
		sessions.Close()
		return fail(err)
	}

	return c, nil
}

// Start begins the background janitor sweeps
func (c *Core) Start() {
	c.janitor.start()
}

// Close stops the janitor and releases the session store and redis client
func (c *Core) Close() {
	c.janitor.stop()
	c.sessions.Close()
	if c.redis != nil {
		c.redis.Close()
	}
}

// Sessions exposes the session store for snapshot persistence collaborators
func (c *Core) Sessions() *session.Store {
	return c.sessions
}

// CSRFHeader returns the request header CSRF tokens are echoed in
func (c *Core) CSRFHeader() string {
	return c.codec.CSRFHeader()
}

// Authenticate is the single entry point for request authentication. It
// routes to the bearer-token or cookie-session flow and never returns an
// error: every outcome is a Decision.
func (c *Core) Authenticate(ctx context.Context, req Request) Decision {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	var decision Decision
	switch {
	case req.BearerToken != "":
		decision = c.authenticateToken(ctx, req)
	case req.CookieHeader != "":
		decision = c.authenticateSession(req)
	default:
		decision = deny(ReasonNoCredentials)
	}

	c.metrics.observe(&decision)
	c.audit(&req, &decision)
	return decision
}

func (c *Core) authenticateToken(ctx context.Context, req Request) Decision {
	result, err := c.validator.Validate(ctx, req.BearerToken, token.Context{
		ClientIP:  req.ClientIP,
		Now:       req.Now,
		Protected: req.Protected,
	})
	if err != nil {
		return tokenDenial(err)
	}

	decision := Decision{
		OK:          true,
		UserID:      result.Claims.Subject,
		Role:        result.Role,
		MFARequired: result.Tier == token.TierStepUp,
		Degraded:    result.Degraded,
		Reason:      ReasonOK,
	}
	if result.Degraded {
		decision.RiskScore = c.config.DegradedRiskWeight
	}
	return decision
}

func (c *Core) authenticateSession(req Request) Decision {
	// General rate gate for the session flow; the token flow has its own
	// gate inside the validator
	if d, limited := c.checkRate(req.ClientIP, rate.RuleGeneralAuth, req.Now); limited {
		return d
	}

	httpReq := &http.Request{Header: http.Header{}}
	httpReq.Header.Set("Cookie", req.CookieHeader)
	if req.CSRFToken != "" {
		httpReq.Header.Set(c.codec.CSRFHeader(), req.CSRFToken)
	}

	sessionID, err := c.codec.Decode(httpReq, nil)
	if err != nil {
		return cookieDenial(err)
	}

	if req.RequireCSRF {
		if err := c.codec.VerifyCSRF(httpReq); err != nil {
			c.sessions.MarkFailure(sessionID)
			return deny(ReasonCSRFMismatch)
		}
	}

	result, err := c.sessions.Validate(sessionID, req.ClientIP, req.UserAgent, req.Now)
	if err != nil {
		return sessionDenial(err)
	}

	return Decision{
		OK:          true,
		UserID:      result.UserID,
		RiskScore:   result.RiskScore,
		MFARequired: result.StepUpRequired,
		SessionID:   sessionID,
		Reason:      ReasonOK,
	}
}

// LoginContext carries the request context of a successful credential check
type LoginContext struct {
	ClientIP  string
	UserAgent string
	Now       time.Time
}

// Login establishes a session for an already-verified user and returns the
// cookie bundle to set. The session id is regenerated immediately so any id
// observable before authentication is never valid after it.
func (c *Core) Login(userID string, lc LoginContext) (*cookie.Bundle, string, error) {
	if lc.Now.IsZero() {
		lc.Now = time.Now()
	}

	provisional, err := c.sessions.Create(userID, lc.ClientIP, lc.UserAgent, lc.Now)
	if err != nil {
		return nil, "", err
	}
	sessionID, err := c.sessions.Regenerate(provisional, lc.Now)
	if err != nil {
		return nil, "", err
	}

	bundle, err := c.codec.Encode(sessionID)
	if err != nil {
		c.sessions.Terminate(sessionID)
		return nil, "", err
	}

	c.logger.Info().
		Str("event_id", uuid.NewString()).
		Str("user_id", userID).
		Str("session_id", sessionID).
		Str("client_ip", lc.ClientIP).
		Msg("session established")

	return bundle, sessionID, nil
}

// LoginAllowed reports whether another credential attempt from this client
// is within the failed-login budget. Call it before verifying credentials;
// the counter increments on every call.
func (c *Core) LoginAllowed(clientIP string, now time.Time) (*rate.Result, error) {
	return c.limiter.Check(context.Background(), clientIP, rate.RuleFailedLogin, now)
}

// Logout terminates one session and returns the cookies that clear the
// client state. Unknown ids still return cleanup cookies.
func (c *Core) Logout(sessionID string) []*http.Cookie {
	if c.sessions.Terminate(sessionID) {
		c.logger.Info().
			Str("event_id", uuid.NewString()).
			Str("session_id", sessionID).
			Msg("session terminated")
	}
	return c.codec.Cleanup()
}

// LogoutAll terminates every session of a user, the logout-everywhere flow
func (c *Core) LogoutAll(userID string) int {
	removed := c.sessions.TerminateAll(userID)
	if removed > 0 {
		c.logger.Info().
			Str("event_id", uuid.NewString()).
			Str("user_id", userID).
			Int("sessions", removed).
			Msg("all sessions terminated")
	}
	return removed
}

// RevokeToken blacklists a single token by jti for its remaining lifetime
func (c *Core) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return c.blacklist.Add(ctx, jti, ttl)
}

// RevokeUserTokens blacklists every token of a subject issued before the
// marker, for logout-everywhere covering the bearer flow too
func (c *Core) RevokeUserTokens(ctx context.Context, userID string, issuedBefore time.Time, ttl time.Duration) error {
	return c.blacklist.AddSubject(ctx, userID, issuedBefore, ttl)
}

// EnrollMFA generates a TOTP secret and its provisioning QR for a user
func (c *Core) EnrollMFA(account string) (secret string, qrPNG []byte, err error) {
	secret, err = c.totp.GenerateSecret()
	if err != nil {
		return "", nil, err
	}
	qrPNG, err = c.totp.ProvisioningQR(account, c.config.MFAIssuer, secret)
	if err != nil {
		return "", nil, err
	}
	return secret, qrPNG, nil
}

// StepUp verifies a TOTP code for a session. Success elevates the session's
// security level and clears accumulated risk; failure feeds the failure
// streak.
func (c *Core) StepUp(sessionID, secret, code string, now time.Time) error {
	if now.IsZero() {
		now = time.Now()
	}

	ok, err := c.totp.Validate(secret, code, now)
	if err != nil {
		return err
	}
	if !ok {
		c.sessions.MarkFailure(sessionID)
		c.metrics.stepUpFailures.Inc()
		return ErrStepUpFailed
	}

	if err := c.sessions.Elevate(sessionID); err != nil {
		return err
	}
	c.logger.Info().
		Str("event_id", uuid.NewString()).
		Str("session_id", sessionID).
		Msg("session elevated after step-up")
	return nil
}

func (c *Core) checkRate(key, ruleID string, now time.Time) (Decision, bool) {
	result, err := c.limiter.Check(context.Background(), key, ruleID, now)
	if err != nil {
		// A missing rule is a configuration gap, not a client fault
		c.logger.Warn().Err(err).Str("rule", ruleID).Msg("rate check skipped")
		return Decision{}, false
	}
	if result.Allowed {
		return Decision{}, false
	}
	d := deny(ReasonRateLimited)
	d.RetryAfter = result.RetryAfter
	return d, true
}

func (c *Core) audit(req *Request, d *Decision) {
	event := c.logger.Info()
	if !d.OK {
		event = c.logger.Warn()
	}
	event.
		Str("event_id", uuid.NewString()).
		Str("client_ip", req.ClientIP).
		Str("reason", string(d.Reason)).
		Bool("ok", d.OK)
	if d.UserID != "" {
		event.Str("user_id", d.UserID)
	}
	if d.SessionID != "" {
		event.Str("session_id", d.SessionID)
	}
	if d.RiskScore > 0 {
		event.Int("risk_score", d.RiskScore)
	}
	if d.Degraded {
		event.Bool("degraded", true)
	}
	event.Msg("authentication decision")
}

func tokenDenial(err error) Decision {
	var terr *token.Error
	if !errors.As(err, &terr) {
		return deny(ReasonInternal)
	}
	switch terr.Kind {
	case token.KindRateLimited:
		d := deny(ReasonRateLimited)
		d.RetryAfter = terr.RetryAfter
		return d
	case token.KindPolicyViolation:
		return deny(ReasonPolicyViolation)
	case token.KindRevoked:
		return deny(ReasonTokenRevoked)
	default:
		return deny(ReasonInvalidToken)
	}
}

func cookieDenial(err error) Decision {
	switch {
	case errors.Is(err, cookie.ErrTamperedCookie):
		return deny(ReasonTamperedCookie)
	case errors.Is(err, cookie.ErrUnknownSession):
		return deny(ReasonSessionNotFound)
	case errors.Is(err, cookie.ErrMissingCookie), errors.Is(err, cookie.ErrBadFormat):
		return deny(ReasonMalformedCookie)
	default:
		return deny(ReasonInternal)
	}
}

func sessionDenial(err error) Decision {
	switch {
	case errors.Is(err, session.ErrExpired):
		return deny(ReasonSessionExpired)
	case errors.Is(err, session.ErrNotFound):
		return deny(ReasonSessionNotFound)
	default:
		return deny(ReasonInternal)
	}
}
