package mfa

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 6238 appendix B test secret: ASCII "12345678901234567890"
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestRFC6238Vectors(t *testing.T) {
	a := New()

	// 8-digit reference values truncated to the default 6 digits
	vectors := map[int64]string{
		59:          "287082",
		1111111109:  "081804",
		1234567890:  "005924",
		20000000000: "353130",
	}
	for timestamp, expected := range vectors {
		code, err := a.GenerateCode(rfcSecret, time.Unix(timestamp, 0))
		require.NoError(t, err)
		assert.Equal(t, expected, code, "timestamp %d", timestamp)
	}
}

func TestGenerateSecret(t *testing.T) {
	a := New()
	secret, err := a.GenerateSecret()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)

	other, err := a.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)

	// Generated secrets must round-trip through code generation
	_, err = a.GenerateCode(secret, time.Now())
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	a := New()
	at := time.Unix(1234567890, 0)

	code, err := a.GenerateCode(rfcSecret, at)
	require.NoError(t, err)

	ok, err := a.Validate(rfcSecret, code, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Validate(rfcSecret, "000000", at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateWindowTolerance(t *testing.T) {
	a := New()
	at := time.Unix(1234567890, 0)

	code, err := a.GenerateCode(rfcSecret, at)
	require.NoError(t, err)

	// One period of drift is within the default window
	ok, err := a.Validate(rfcSecret, code, at.Add(30*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)

	// Two periods is not
	ok, err = a.Validate(rfcSecret, code, at.Add(90*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateInputChecks(t *testing.T) {
	a := New()
	_, err := a.Validate("", "123456", time.Now())
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = a.Validate(rfcSecret, "", time.Now())
	assert.ErrorIs(t, err, ErrEmptyCode)
	_, err = a.Validate("!!not-base32!!", "123456", time.Now())
	assert.ErrorIs(t, err, ErrSecretDecode)
}

func TestProvisioningURI(t *testing.T) {
	a := New()
	uri, err := a.ProvisioningURI("clinician@example.org", "TrustCore", rfcSecret)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "issuer=TrustCore")
	assert.Contains(t, uri, "secret="+rfcSecret)
	assert.Contains(t, uri, "digits=6")
	assert.Contains(t, uri, "period=30")

	_, err = a.ProvisioningURI("", "TrustCore", rfcSecret)
	assert.ErrorIs(t, err, ErrEmptyAccount)
}

func TestProvisioningQR(t *testing.T) {
	a := New()
	png, err := a.ProvisioningQR("clinician@example.org", "TrustCore", rfcSecret)
	require.NoError(t, err)
	// PNG magic bytes
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestCustomDigitsAndPeriod(t *testing.T) {
	a := New(WithDigits(8), WithPeriod(60))
	code, err := a.GenerateCode(rfcSecret, time.Unix(59, 0))
	require.NoError(t, err)
	assert.Len(t, code, 8)
}
