package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/trustcore/log/redact"
)

func TestLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, WithRedaction(redact.Credentials()))

	logger.Info().
		Str("session_id", "3f8a92b1c04d5e6f7a8b9c0d1e2f3a4b").
		Msg("session created")

	out := buf.String()
	assert.NotContains(t, out, "3f8a92b1c04d5e6f7a8b9c0d1e2f3a4b")
	assert.Contains(t, out, "3f8a92****")
	assert.Contains(t, out, "session created")
}

func TestWithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, WithLevel(zerolog.WarnLevel))

	logger.Info().Msg("should be dropped")
	logger.Warn().Msg("should be written")

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should be written")
}

func TestGlobalLogger(t *testing.T) {
	require.NotNil(t, G)
	assert.NotNil(t, G.GetRedactHook())
}
