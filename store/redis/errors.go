package redis

import "errors"

var (
	ErrInvalidConfig  = errors.New("redis: invalid config")
	ErrEmptyAddrs     = errors.New("redis: addrs cannot be empty")
	ErrInvalidTimeout = errors.New("redis: timeout cannot be negative")
)
