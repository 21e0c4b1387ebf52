package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Session struct {
		IdleTimeout int64 `mapstructure:"idleTimeout" default:"1800"`
	} `mapstructure:"session"`
	Secret string `mapstructure:"secret" default:"change-me" validate:"min=8"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return dir
}

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	dir := writeConfigFile(t, "secret: super-secret-value\n")

	target := &testConfig{}
	c := New(target)
	c.loader = NewFileLoader("config.yaml", []string{dir}, c.viper, nil)
	require.NoError(t, c.Load())

	assert.Equal(t, "super-secret-value", target.Secret)
	assert.Equal(t, int64(1800), target.Session.IdleTimeout)
}

func TestLoadValidationFailure(t *testing.T) {
	dir := writeConfigFile(t, "secret: short\n")

	target := &testConfig{}
	c := New(target)
	c.loader = NewFileLoader("config.yaml", []string{dir}, c.viper, c.validate)

	err := c.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadMissingFile(t *testing.T) {
	target := &testConfig{}
	c := New(target)
	c.loader = NewFileLoader("config.yaml", []string{t.TempDir()}, c.viper, nil)

	assert.Error(t, c.Load())
}
