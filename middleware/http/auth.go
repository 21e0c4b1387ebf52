// Package middleware provides the gin gates in front of the trust core:
// authentication (bearer or cookie session), CSRF enforcement on mutating
// requests, and request id propagation.
package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/trustcore/core/identity"
	"github.com/kochabx/trustcore/core/trust"
	"github.com/kochabx/trustcore/errors"
)

type identityKey struct{}

// Identity is what the auth gate stores in the request context for
// downstream handlers
type Identity struct {
	UserID      string
	Role        identity.Role
	RiskScore   int
	MFARequired bool
	SessionID   string
	Degraded    bool
}

// GetIdentity returns the authenticated identity from a request context
func GetIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}

// AuthConfig configures the authentication gate
type AuthConfig struct {
	// Core makes the decisions; required
	Core *trust.Core

	// SkipPaths bypass authentication (health checks, docs); supports
	// exact, "/prefix/**" and glob entries
	SkipPaths []string

	// SkipFunc bypasses authentication when it returns true
	SkipFunc func(*gin.Context) bool

	// Protected enforces the configured token scope on these routes
	Protected bool
}

// Auth returns the authentication gate. Denials carry a uniform generic
// body; the internal reason stays in logs and metrics.
func Auth(config AuthConfig) gin.HandlerFunc {
	matcher := NewPathMatcher(config.SkipPaths)

	return func(c *gin.Context) {
		if config.Core == nil || shouldSkip(c, matcher, config.SkipFunc) {
			c.Next()
			return
		}

		req := trust.Request{
			BearerToken:  bearerToken(c),
			CookieHeader: c.GetHeader("Cookie"),
			CSRFToken:    c.GetHeader(config.Core.CSRFHeader()),
			RequireCSRF:  mutating(c.Request.Method),
			ClientIP:     c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			Protected:    config.Protected,
		}

		decision := config.Core.Authenticate(c.Request.Context(), req)
		if !decision.OK {
			abortDenied(c, &decision)
			return
		}

		id := &Identity{
			UserID:      decision.UserID,
			Role:        decision.Role,
			RiskScore:   decision.RiskScore,
			MFARequired: decision.MFARequired,
			SessionID:   decision.SessionID,
			Degraded:    decision.Degraded,
		}
		ctx := context.WithValue(c.Request.Context(), identityKey{}, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole returns a gate that runs after Auth and rejects identities
// below the minimum role
func RequireRole(minimum identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(401, errors.Unauthorized("authentication required"))
			return
		}
		if !id.Role.AtLeast(minimum) {
			c.AbortWithStatusJSON(403, errors.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

func abortDenied(c *gin.Context, d *trust.Decision) {
	status := d.StatusCode()

	var body *errors.Error
	switch status {
	case 429:
		c.Header("Retry-After", strconv.Itoa(d.RetryAfterSeconds()))
		body = errors.TooManyRequests("too many requests")
	case 403:
		body = errors.Forbidden("forbidden")
	default:
		body = errors.Unauthorized("authentication required")
	}

	c.AbortWithStatusJSON(status, body)
}
