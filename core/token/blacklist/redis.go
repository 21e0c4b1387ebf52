package blacklist

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix   = "trustcore:blacklist:jti:"
	subjectKeyPrefix = "trustcore:blacklist:sub:"
)

// Redis is a blacklist backed by a shared redis store, for deployments where
// revocation must be visible across instances
type Redis struct {
	client redis.UniversalClient
}

// NewRedis creates a redis-backed blacklist
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Add implements Blacklist
func (r *Redis) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return ErrEmptyJTI
	}
	return r.client.Set(ctx, tokenKeyPrefix+jti, "1", ttl).Err()
}

// AddSubject implements Blacklist. The marker value is the issued-before
// timestamp in unix seconds.
func (r *Redis) AddSubject(ctx context.Context, subject string, issuedBefore time.Time, ttl time.Duration) error {
	return r.client.Set(ctx, subjectKeyPrefix+subject, strconv.FormatInt(issuedBefore.Unix(), 10), ttl).Err()
}

// Contains implements Blacklist
func (r *Redis) Contains(ctx context.Context, jti, subject string, issuedAt time.Time) (bool, error) {
	if jti != "" {
		exists, err := r.client.Exists(ctx, tokenKeyPrefix+jti).Result()
		if err != nil {
			return false, err
		}
		if exists > 0 {
			return true, nil
		}
	}

	if subject == "" {
		return false, nil
	}

	value, err := r.client.Get(ctx, subjectKeyPrefix+subject).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	issuedBefore, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, err
	}

	return issuedAt.Unix() < issuedBefore, nil
}
