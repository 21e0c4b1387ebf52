// Package rate provides fixed-window request counting keyed by client
// identity and rule. The fixed window is intentionally simple: retryAfter is
// exactly predictable, which client back-off and lockout reporting require.
package rate

import (
	"context"
	"time"
)

// Rule pairs a window with a limit for one operation class
type Rule struct {
	ID       string `json:"id" validate:"required"`
	WindowMs int64  `json:"windowMs" validate:"gt=0"`
	Limit    int    `json:"limit" validate:"gt=0"`
}

// Window returns the rule window as a duration
func (r Rule) Window() time.Duration {
	return time.Duration(r.WindowMs) * time.Millisecond
}

// Result reports the outcome of a single check
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds, as used
// in the Retry-After response header. Zero when the check was allowed.
func (r *Result) RetryAfterSeconds() int {
	if r.Allowed || r.RetryAfter <= 0 {
		return 0
	}
	secs := int(r.RetryAfter / time.Second)
	if r.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

// Limiter counts requests per (key, rule) pair
type Limiter interface {
	// Check records one request against the rule's window and reports
	// whether it is within the limit
	Check(ctx context.Context, key, ruleID string, now time.Time) (*Result, error)

	// Sweep removes buckets untouched for longer than their own window
	Sweep(now time.Time)
}

// DefaultRules are the operation classes the trust core applies when no
// rules are configured
func DefaultRules() []Rule {
	return []Rule{
		{ID: RuleFailedLogin, WindowMs: 15 * 60 * 1000, Limit: 10},
		{ID: RuleGeneralAuth, WindowMs: 60 * 1000, Limit: 100},
		{ID: RuleTokenValidate, WindowMs: 60 * 1000, Limit: 300},
	}
}

// Well-known rule identifiers
const (
	RuleFailedLogin   = "failed-login"
	RuleGeneralAuth   = "general-auth"
	RuleTokenValidate = "token-validate"
)
