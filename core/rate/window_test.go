package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, rules ...Rule) *FixedWindowLimiter {
	t.Helper()
	if len(rules) == 0 {
		rules = []Rule{{ID: "test", WindowMs: 60000, Limit: 5}}
	}
	l, err := NewFixedWindowLimiter(rules)
	require.NoError(t, err)
	return l
}

func TestSixthCallDeniedWithinWindow(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		result, err := l.Check(ctx, "203.0.113.7", "test", now)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "call %d should be allowed", i+1)
		assert.Equal(t, 4-i, result.Remaining)
	}

	result, err := l.Check(ctx, "203.0.113.7", "test", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfterSeconds(), 0)
	assert.LessOrEqual(t, result.RetryAfterSeconds(), 60)
}

func TestNewWindowResetsCounter(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 6; i++ {
		_, err := l.Check(ctx, "k", "test", now)
		require.NoError(t, err)
	}

	// First call of the next window is allowed again
	result, err := l.Check(ctx, "k", "test", now.Add(61*time.Second))
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining)
}

func TestKeysAreIndependent(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 6; i++ {
		_, err := l.Check(ctx, "a", "test", now)
		require.NoError(t, err)
	}

	result, err := l.Check(ctx, "b", "test", now)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestUnknownRule(t *testing.T) {
	l := newTestLimiter(t)
	_, err := l.Check(context.Background(), "k", "missing", time.Now())
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestRulesDoNotShareBuckets(t *testing.T) {
	l := newTestLimiter(t,
		Rule{ID: "strict", WindowMs: 60000, Limit: 1},
		Rule{ID: "loose", WindowMs: 60000, Limit: 100},
	)
	ctx := context.Background()
	now := time.Now()

	_, err := l.Check(ctx, "k", "strict", now)
	require.NoError(t, err)
	denied, err := l.Check(ctx, "k", "strict", now)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	allowed, err := l.Check(ctx, "k", "loose", now)
	require.NoError(t, err)
	assert.True(t, allowed.Allowed)
}

func TestSweepRemovesIdleBuckets(t *testing.T) {
	l := newTestLimiter(t, Rule{ID: "test", WindowMs: 1000, Limit: 5})
	ctx := context.Background()
	now := time.Now()

	_, err := l.Check(ctx, "idle", "test", now)
	require.NoError(t, err)

	l.Sweep(now.Add(3 * time.Second))

	var total int
	for _, s := range l.shards {
		s.mu.Lock()
		total += len(s.buckets)
		s.mu.Unlock()
	}
	assert.Zero(t, total)
}

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	r := &Result{RetryAfter: 1500 * time.Millisecond}
	assert.Equal(t, 2, r.RetryAfterSeconds())

	r = &Result{RetryAfter: 2 * time.Second}
	assert.Equal(t, 2, r.RetryAfterSeconds())

	r = &Result{Allowed: true}
	assert.Zero(t, r.RetryAfterSeconds())
}
