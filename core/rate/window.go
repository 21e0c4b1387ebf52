package rate

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const defaultShardCount = 32

type bucket struct {
	windowStart int64 // unix milliseconds
	count       int
	touchedAt   int64 // unix milliseconds
}

type shard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// FixedWindowLimiter is an in-memory fixed-window counter. Buckets are
// created lazily per (key, rule) and distributed over shards so that checks
// for unrelated keys never contend.
type FixedWindowLimiter struct {
	rules  map[string]Rule
	shards []*shard
}

// NewFixedWindowLimiter creates a limiter for the given rules
func NewFixedWindowLimiter(rules []Rule) (*FixedWindowLimiter, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	l := &FixedWindowLimiter{
		rules:  make(map[string]Rule, len(rules)),
		shards: make([]*shard, defaultShardCount),
	}
	for _, r := range rules {
		l.rules[r.ID] = r
	}
	for i := range l.shards {
		l.shards[i] = &shard{buckets: make(map[string]*bucket)}
	}

	return l, nil
}

// Check implements Limiter
func (l *FixedWindowLimiter) Check(_ context.Context, key, ruleID string, now time.Time) (*Result, error) {
	rule, ok := l.rules[ruleID]
	if !ok {
		return nil, ErrUnknownRule
	}

	bucketKey := key + "/" + ruleID
	s := l.shardFor(bucketKey)
	nowMs := now.UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucketKey]
	if !ok {
		b = &bucket{windowStart: nowMs}
		s.buckets[bucketKey] = b
	}

	// A fully elapsed window resets the counter
	if nowMs-b.windowStart >= rule.WindowMs {
		b.windowStart = nowMs
		b.count = 0
	}
	b.count++
	b.touchedAt = nowMs

	resetAt := time.UnixMilli(b.windowStart + rule.WindowMs)
	if b.count > rule.Limit {
		return &Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: time.Duration(b.windowStart+rule.WindowMs-nowMs) * time.Millisecond,
		}, nil
	}

	return &Result{
		Allowed:   true,
		Remaining: rule.Limit - b.count,
		ResetAt:   resetAt,
	}, nil
}

// Sweep implements Limiter. A bucket is collected once it has been idle for
// longer than its rule's window plus the same window as grace.
func (l *FixedWindowLimiter) Sweep(now time.Time) {
	nowMs := now.UnixMilli()

	for _, s := range l.shards {
		s.mu.Lock()
		for key, b := range s.buckets {
			rule, ok := l.rules[ruleIDFromBucketKey(key)]
			if !ok {
				delete(s.buckets, key)
				continue
			}
			if nowMs-b.touchedAt >= 2*rule.WindowMs {
				delete(s.buckets, key)
			}
		}
		s.mu.Unlock()
	}
}

func (l *FixedWindowLimiter) shardFor(bucketKey string) *shard {
	h := fnv.New32a()
	h.Write([]byte(bucketKey))
	return l.shards[h.Sum32()%uint32(len(l.shards))]
}

func ruleIDFromBucketKey(bucketKey string) string {
	for i := len(bucketKey) - 1; i >= 0; i-- {
		if bucketKey[i] == '/' {
			return bucketKey[i+1:]
		}
	}
	return bucketKey
}
