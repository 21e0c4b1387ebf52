package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Host    string   `default:"localhost"`
	Port    int      `default:"6379"`
	Ratio   float64  `default:"0.75"`
	Enabled bool     `default:"true"`
	Algs    []string `default:"HS256,HS512"`
	Nested  nestedConfig
	Ptr     *nestedConfig
}

type nestedConfig struct {
	Window int64 `default:"60000"`
}

func TestApplyDefaults(t *testing.T) {
	cfg := &sampleConfig{}
	require.NoError(t, ApplyDefaults(cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6379, cfg.Port)
	assert.Equal(t, 0.75, cfg.Ratio)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"HS256", "HS512"}, cfg.Algs)
	assert.Equal(t, int64(60000), cfg.Nested.Window)
	require.NotNil(t, cfg.Ptr)
	assert.Equal(t, int64(60000), cfg.Ptr.Window)
}

func TestApplyDefaultsKeepsExistingValues(t *testing.T) {
	cfg := &sampleConfig{Host: "redis.internal", Port: 7000}
	require.NoError(t, ApplyDefaults(cfg))

	assert.Equal(t, "redis.internal", cfg.Host)
	assert.Equal(t, 7000, cfg.Port)
}

func TestApplyDefaultsRejectsNonPointer(t *testing.T) {
	err := ApplyDefaults(sampleConfig{})
	assert.ErrorIs(t, err, ErrTargetMustBePointer)
}

func TestApplyDefaultsSliceOfStructs(t *testing.T) {
	type wrapper struct {
		Items []nestedConfig
	}
	w := &wrapper{Items: []nestedConfig{{}, {Window: 5}}}
	require.NoError(t, ApplyDefaults(w))

	assert.Equal(t, int64(60000), w.Items[0].Window)
	assert.Equal(t, int64(5), w.Items[1].Window)
}
