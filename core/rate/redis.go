package rate

import (
	"context"
	_ "embed"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	//go:embed fixedwindow.lua
	fixedWindowLua       string
	fixedWindowLuaScript = redis.NewScript(fixedWindowLua)
)

// RedisLimiter is a fixed-window counter backed by redis, for deployments
// where several instances must share rate-limit state. Window bookkeeping is
// done by key TTL, so Sweep is a no-op.
type RedisLimiter struct {
	client    redis.UniversalClient
	rules     map[string]Rule
	keyPrefix string
	script    *redis.Script
}

// NewRedisLimiter creates a redis-backed limiter for the given rules
func NewRedisLimiter(client redis.UniversalClient, rules []Rule) (*RedisLimiter, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	l := &RedisLimiter{
		client:    client,
		rules:     make(map[string]Rule, len(rules)),
		keyPrefix: "trustcore:rate:",
		script:    fixedWindowLuaScript,
	}
	for _, r := range rules {
		l.rules[r.ID] = r
	}

	return l, nil
}

// Check implements Limiter
func (l *RedisLimiter) Check(ctx context.Context, key, ruleID string, now time.Time) (*Result, error) {
	rule, ok := l.rules[ruleID]
	if !ok {
		return nil, ErrUnknownRule
	}

	bucketKey := l.keyPrefix + key + "/" + ruleID
	values, err := l.script.Run(ctx, l.client, []string{bucketKey}, rule.WindowMs, rule.Limit).Int64Slice()
	if err != nil {
		return nil, err
	}

	count, ttlMs := int(values[0]), values[1]
	resetAt := now.Add(time.Duration(ttlMs) * time.Millisecond)

	if count > rule.Limit {
		return &Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: time.Duration(ttlMs) * time.Millisecond,
		}, nil
	}

	return &Result{
		Allowed:   true,
		Remaining: rule.Limit - count,
		ResetAt:   resetAt,
	}, nil
}

// Sweep implements Limiter. Redis expires buckets by TTL.
func (l *RedisLimiter) Sweep(time.Time) {}
