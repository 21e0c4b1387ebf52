package cookie

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "0123456789abcdef0123456789abcdef"
	testSessionID = "00112233445566778899aabbccddeeff"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(&Config{Secret: testSecret})
	require.NoError(t, err)
	return codec
}

func requestWith(bundle *Bundle) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range bundle.Cookies() {
		r.AddCookie(cookie)
	}
	return r
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec(&Config{Secret: "too-short"})
	assert.Error(t, err)
}

func TestEncodeAttributes(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	assert.Equal(t, testSessionID, bundle.Session.Value)
	assert.True(t, bundle.Session.HttpOnly)
	assert.True(t, bundle.Session.Secure)
	assert.Equal(t, http.SameSiteStrictMode, bundle.Session.SameSite)
	assert.Equal(t, 28800, bundle.Session.MaxAge)

	assert.True(t, bundle.Signature.HttpOnly)
	assert.Len(t, bundle.Signature.Value, 64)

	// CSRF cookie must be readable by client script
	assert.False(t, bundle.CSRF.HttpOnly)
	assert.Len(t, bundle.CSRF.Value, 64)
	assert.NotEqual(t, bundle.Session.Value, bundle.CSRF.Value)
}

func TestEncodeRejectsBadSessionID(t *testing.T) {
	codec := newTestCodec(t)
	_, err := codec.Encode("not-a-session-id")
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestCSRFTokenIsFresh(t *testing.T) {
	codec := newTestCodec(t)
	first, err := codec.Encode(testSessionID)
	require.NoError(t, err)
	second, err := codec.Encode(testSessionID)
	require.NoError(t, err)
	assert.NotEqual(t, first.CSRFToken(), second.CSRFToken())
}

func TestDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	sessionID, err := codec.Decode(requestWith(bundle), func(id string) bool {
		return id == testSessionID
	})
	require.NoError(t, err)
	assert.Equal(t, testSessionID, sessionID)
}

func TestDecodeMissingCookies(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	for skip := 0; skip < 3; skip++ {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		for i, cookie := range bundle.Cookies() {
			if i != skip {
				r.AddCookie(cookie)
			}
		}
		_, err := codec.Decode(r, nil)
		assert.ErrorIs(t, err, ErrMissingCookie)
	}
}

func TestDecodeBadFormat(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	bundle.Session.Value = "zz112233445566778899aabbccddeeff"
	_, err = codec.Decode(requestWith(bundle), nil)
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestDecodeTamperedSignature(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	// Flipping any single bit of the signature is tamper evidence
	raw, err := hex.DecodeString(bundle.Signature.Value)
	require.NoError(t, err)
	for i := 0; i < len(raw)*8; i += 37 {
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[i/8] ^= 1 << (i % 8)
		bundle.Signature.Value = hex.EncodeToString(flipped)

		_, err := codec.Decode(requestWith(bundle), nil)
		assert.ErrorIs(t, err, ErrTamperedCookie, "bit %d", i)
	}
}

func TestDecodeSwappedSessionID(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	// A valid-format id under someone else's signature fails verification
	bundle.Session.Value = "ffeeddccbbaa99887766554433221100"
	_, err = codec.Decode(requestWith(bundle), nil)
	assert.ErrorIs(t, err, ErrTamperedCookie)
}

func TestDecodeUnknownSession(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	_, err = codec.Decode(requestWith(bundle), func(string) bool { return false })
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestVerifyCSRF(t *testing.T) {
	codec := newTestCodec(t)
	bundle, err := codec.Encode(testSessionID)
	require.NoError(t, err)

	r := requestWith(bundle)
	r.Header.Set(codec.CSRFHeader(), bundle.CSRFToken())
	assert.NoError(t, codec.VerifyCSRF(r))

	r.Header.Set(codec.CSRFHeader(), "forged-token")
	assert.ErrorIs(t, codec.VerifyCSRF(r), ErrCSRFMismatch)

	r.Header.Del(codec.CSRFHeader())
	assert.ErrorIs(t, codec.VerifyCSRF(r), ErrCSRFMismatch)
}

func TestCleanup(t *testing.T) {
	codec := newTestCodec(t)
	cookies := codec.Cleanup()
	require.Len(t, cookies, 3)
	for _, cookie := range cookies {
		assert.Equal(t, -1, cookie.MaxAge)
		assert.Empty(t, cookie.Value)
	}
}
