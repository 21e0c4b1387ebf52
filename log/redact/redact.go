// Package redact masks credential material in log output. The trust core
// logs denial reasons and identifiers for operators; raw tokens, cookie
// signatures and full session identifiers must never reach a sink.
package redact

import (
	"fmt"
	"regexp"
	"sync"
)

// Rule rewrites matches of a pattern before a log line is written
type Rule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewRule compiles a redaction rule
func NewRule(name, pattern, replacement string) (*Rule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return &Rule{name: name, pattern: regex, replacement: replacement}, nil
}

// MustNewRule compiles a rule and panics on failure. For builtin rules only.
func MustNewRule(name, pattern, replacement string) *Rule {
	rule, err := NewRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *Rule) Name() string {
	return r.name
}

func (r *Rule) apply(s string) string {
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// Hook holds an ordered set of redaction rules
type Hook struct {
	mu    sync.RWMutex
	rules []*Rule
}

// NewHook creates an empty hook
func NewHook() *Hook {
	return &Hook{}
}

// AddRule appends a rule to the hook
func (h *Hook) AddRule(rules ...*Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rules = append(h.rules, rules...)
}

// RuleCount returns the number of registered rules
func (h *Hook) RuleCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

// Redact applies every rule to the string in registration order
func (h *Hook) Redact(s string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, rule := range h.rules {
		s = rule.apply(s)
	}
	return s
}
