package redis

import (
	"github.com/kochabx/trustcore/core/tag"
)

// Config is the unified redis configuration supporting single, cluster and
// sentinel deployments. Timeouts are in milliseconds.
type Config struct {
	// Addrs is the list of redis addresses.
	// Single: ["localhost:6379"]; cluster: one entry per node;
	// sentinel: one entry per sentinel.
	Addrs []string

	// MasterName selects sentinel mode when non-empty
	MasterName string

	Username string
	Password string
	DB       int

	DialTimeout  int64 `default:"5000"`
	ReadTimeout  int64 `default:"3000"`
	WriteTimeout int64 `default:"3000"`

	PoolSize     int
	MinIdleConns int
	PoolTimeout  int64 `default:"4000"`

	MaxRetries int
}

// ApplyDefaults applies tagged default values
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Single creates a single-node configuration
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Sentinel creates a sentinel-mode configuration
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}
