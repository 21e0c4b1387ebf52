package redis

import (
	"context"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/trustcore/log"
)

// Client wraps a redis.UniversalClient configured from a Config
type Client struct {
	redis.UniversalClient
	config *Config
	logger *log.Logger
}

// New creates a new redis client. The deployment mode (single/cluster/
// sentinel) is derived from the configuration.
func New(cfg *Config, logger *log.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.G
	}

	client := &Client{
		config:          cfg,
		logger:          logger,
		UniversalClient: redis.NewUniversalClient(buildUniversalOptions(cfg)),
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Debug().Strs("addrs", cfg.Addrs).Msg("redis client created")
	return client, nil
}

func buildUniversalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}

	return &redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,

		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Millisecond,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,

		PoolSize:     poolSize,
		MinIdleConns: cfg.MinIdleConns,
		PoolTimeout:  time.Duration(cfg.PoolTimeout) * time.Millisecond,

		MaxRetries: cfg.MaxRetries,
	}
}
