package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Single("localhost:6379")
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, int64(5000), cfg.DialTimeout)
	assert.Equal(t, int64(3000), cfg.ReadTimeout)
	assert.Equal(t, int64(3000), cfg.WriteTimeout)
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).Validate(), ErrEmptyAddrs)
	assert.ErrorIs(t, (&Config{Addrs: []string{"a:1"}, DialTimeout: -1}).Validate(), ErrInvalidTimeout)
	assert.NoError(t, Single("localhost:6379").Validate())
}

func TestSentinelConfig(t *testing.T) {
	cfg := Sentinel("mymaster", "s1:26379", "s2:26379")
	assert.Equal(t, "mymaster", cfg.MasterName)
	assert.Len(t, cfg.Addrs, 2)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
