package hmac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	sig, err := Sign("secret-key", "payload")
	require.NoError(t, err)
	assert.Len(t, sig, 64)

	assert.NoError(t, Verify("secret-key", "payload", sig))
}

func TestVerifyMismatch(t *testing.T) {
	sig, err := Sign("secret-key", "payload")
	require.NoError(t, err)

	assert.ErrorIs(t, Verify("secret-key", "other", sig), ErrMismatch)
	assert.ErrorIs(t, Verify("other-key", "payload", sig), ErrMismatch)

	corrupt := "0"
	if sig[63] == '0' {
		corrupt = "1"
	}
	assert.ErrorIs(t, Verify("secret-key", "payload", sig[:63]+corrupt), ErrMismatch)
}

func TestEmptySecret(t *testing.T) {
	_, err := Sign("", "payload")
	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.ErrorIs(t, Verify("", "payload", "sig"), ErrEmptySecret)
}
