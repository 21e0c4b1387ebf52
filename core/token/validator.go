// Package token validates bearer tokens against structural, cryptographic
// and claim-based rules. Checks run in a fixed order and short-circuit on
// the first failure; cryptographic work happens only after the rate gate and
// the structural checks have passed.
package token

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kochabx/trustcore/core/identity"
	"github.com/kochabx/trustcore/core/rate"
	"github.com/kochabx/trustcore/core/token/blacklist"
	"github.com/kochabx/trustcore/log"
)

// Context carries the per-request inputs of a validation
type Context struct {
	ClientIP string
	Now      time.Time
	// Protected requires the configured scope claim to be present
	Protected bool
}

// Validator performs stateless token validation
type Validator struct {
	config    *Config
	blacklist blacklist.Blacklist
	limiter   rate.Limiter
	logger    *log.Logger
	parser    *jwt.Parser
}

// Option configures a Validator
type Option func(*Validator)

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithLimiter sets the rate limiter gating validation attempts
func WithLimiter(limiter rate.Limiter) Option {
	return func(v *Validator) {
		v.limiter = limiter
	}
}

// NewValidator creates a validator. The blacklist is required; wrap it in a
// blacklist.Guard to bound lookup latency.
func NewValidator(config *Config, bl blacklist.Blacklist, opts ...Option) (*Validator, error) {
	if config == nil {
		return nil, errors.New("token: config is required")
	}
	if err := config.init(); err != nil {
		return nil, err
	}
	if len(config.Keys) == 0 {
		return nil, errors.New("token: at least one verification key is required")
	}
	if bl == nil {
		bl = blacklist.NewNoop()
	}

	v := &Validator{
		config:    config,
		blacklist: bl,
		logger:    log.G,
		parser: jwt.NewParser(
			jwt.WithValidMethods(config.AllowedAlgorithms),
			jwt.WithoutClaimsValidation(),
		),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

// Validate runs the full validation pipeline. Failures are *Error values
// with a Kind; callers must reply to clients with a uniform generic message
// and keep the kind for operator logs.
func (v *Validator) Validate(ctx context.Context, tokenString string, vc Context) (*Result, error) {
	if vc.Now.IsZero() {
		vc.Now = time.Now()
	}

	// 1. Rate gate, before any cryptographic work
	if err := v.checkRate(ctx, tokenString, vc); err != nil {
		return nil, err
	}

	// 2. Structural check: exactly three non-empty segments
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return nil, newError(KindMalformed, "expected 3 segments, got %d", len(segments))
	}
	for _, segment := range segments {
		if segment == "" {
			return nil, newError(KindMalformed, "empty segment")
		}
	}

	// 3. Header decode without trusting it. alg absent, "none" or outside
	// the allow-list defeats algorithm-confusion attacks here.
	header, err := decodeHeader(segments[0])
	if err != nil {
		return nil, newError(KindMalformed, "undecodable header")
	}
	if header.Alg == "" || strings.EqualFold(header.Alg, "none") {
		return nil, newError(KindAlgorithmRejected, "alg %q", header.Alg)
	}
	if !v.config.algorithmAllowed(header.Alg) {
		return nil, newError(KindAlgorithmRejected, "alg %q not in allow-list", header.Alg)
	}

	// 4. Key resolution by kid
	key, ok := v.config.keyFor(header.Kid)
	if !ok {
		return nil, newError(KindUnknownKey, "kid %q", header.Kid)
	}

	// 5. Signature verification with the resolved key
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(key.Secret), nil
	}); err != nil {
		return nil, mapParseError(err)
	}

	// 6. Claim validation
	role, err := v.validateClaims(claims, vc.Now)
	if err != nil {
		return nil, err
	}

	// 7. Revocation check, the only suspension point
	degraded, err := v.checkRevocation(ctx, claims)
	if err != nil {
		return nil, err
	}

	// 8. Context policy
	if vc.Protected && v.config.RequiredScope != "" && claims.Scope != v.config.RequiredScope {
		return nil, newError(KindPolicyViolation, "scope %q does not satisfy %q", claims.Scope, v.config.RequiredScope)
	}

	// 9. Trust tier from claim content
	tier := TierNormal
	if role.Privileged() && !claims.MFA {
		tier = TierStepUp
	}

	return &Result{Claims: claims, Role: role, Tier: tier, Degraded: degraded}, nil
}

func (v *Validator) checkRate(ctx context.Context, tokenString string, vc Context) error {
	if v.limiter == nil {
		return nil
	}

	key := vc.ClientIP
	if key == "" {
		key = decodeSubjectUnverified(tokenString)
	}
	if key == "" {
		key = "unknown"
	}

	result, err := v.limiter.Check(ctx, key, rate.RuleTokenValidate, vc.Now)
	if err != nil {
		return err
	}
	if !result.Allowed {
		return &Error{
			Kind:       KindRateLimited,
			RetryAfter: result.RetryAfter,
			detail:     "validation attempts exhausted",
		}
	}
	return nil
}

func (v *Validator) validateClaims(claims *Claims, now time.Time) (role identity.Role, err error) {
	skew := v.config.ClockSkew()

	if claims.Issuer != v.config.Issuer {
		return role, newError(KindClaimInvalid, "unexpected issuer")
	}
	if !audienceContains(claims.Audience, v.config.Audience) {
		return role, newError(KindClaimInvalid, "unexpected audience")
	}

	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return role, newError(KindClaimInvalid, "exp and iat are required")
	}
	exp, iat := claims.ExpiresAt.Time, claims.IssuedAt.Time

	if now.After(exp.Add(skew)) {
		return role, newError(KindExpired, "expired %s ago", now.Sub(exp).Round(time.Second))
	}
	if iat.After(now.Add(skew)) {
		return role, newError(KindClaimInvalid, "iat is in the future")
	}
	if !exp.After(iat) {
		return role, newError(KindClaimInvalid, "exp must be after iat")
	}
	if exp.Sub(iat) > v.config.MaxLifetime() {
		return role, newError(KindClaimInvalid, "lifetime %s exceeds maximum", exp.Sub(iat))
	}

	parsed, parseErr := claims.ParsedRole()
	if parseErr != nil {
		return role, newError(KindClaimInvalid, "unknown role claim")
	}
	return parsed, nil
}

func (v *Validator) checkRevocation(ctx context.Context, claims *Claims) (degraded bool, err error) {
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	revoked, err := v.blacklist.Contains(ctx, claims.ID, claims.Subject, issuedAt)
	if err != nil {
		if errors.Is(err, blacklist.ErrUnavailable) {
			if v.config.FailOpen {
				v.logger.Warn().Err(err).Msg("revocation store unavailable, continuing fail-open")
				return true, nil
			}
			v.logger.Error().Err(err).Msg("revocation store unavailable, denying fail-closed")
			return false, newError(KindRevoked, "revocation store unavailable (fail-closed)")
		}
		return false, newError(KindRevoked, "revocation lookup failed: %v", err)
	}
	if revoked {
		return false, newError(KindRevoked, "token is blacklisted")
	}
	return false, nil
}

func decodeHeader(segment string) (*tokenHeader, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, err
	}
	header := &tokenHeader{}
	if err := json.Unmarshal(raw, header); err != nil {
		return nil, err
	}
	return header, nil
}

// decodeSubjectUnverified extracts the sub claim without verification, used
// only as a rate-limit key when no client IP is available
func decodeSubjectUnverified(tokenString string) string {
	segments := strings.SplitN(tokenString, ".", 3)
	if len(segments) < 2 {
		return ""
	}
	raw, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return ""
	}
	var payload struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Sub
}

func audienceContains(audience jwt.ClaimStrings, expected string) bool {
	for _, aud := range audience {
		if aud == expected {
			return true
		}
	}
	return false
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return newError(KindBadSignature, "signature mismatch")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newError(KindMalformed, "unparsable token")
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return newError(KindBadSignature, "unverifiable token")
	default:
		return newError(KindBadSignature, "parse failed: %v", err)
	}
}
