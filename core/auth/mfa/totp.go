// Package mfa implements TOTP (RFC 6238) for step-up authentication. A
// session whose risk score crosses the escalation threshold must present a
// valid code before sensitive operations continue.
package mfa

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	defaultSecretSize = 20
	defaultPeriod     = 30
	defaultDigits     = 6
	defaultQRSize     = 256
	defaultWindow     = 1

	minSecretSize = 8
	maxSecretSize = 128
	minDigits     = 4
	maxDigits     = 10
	maxWindow     = 10
)

var (
	ErrEmptySecret  = errors.New("mfa: secret cannot be empty")
	ErrEmptyCode    = errors.New("mfa: code cannot be empty")
	ErrEmptyAccount = errors.New("mfa: account cannot be empty")
	ErrEmptyIssuer  = errors.New("mfa: issuer cannot be empty")
	ErrSecretDecode = errors.New("mfa: failed to decode secret")
)

// Authenticator generates and validates time-based one-time passwords
type Authenticator struct {
	secretSize int
	period     int
	digits     int
	qrSize     int
	window     int

	digitsMod uint32
	encoder   *base32.Encoding
}

// Option configures an Authenticator
type Option func(*Authenticator)

// WithSecretSize sets the generated secret length in bytes
func WithSecretSize(size int) Option {
	return func(a *Authenticator) {
		if size >= minSecretSize && size <= maxSecretSize {
			a.secretSize = size
		}
	}
}

// WithPeriod sets the code rotation period in seconds
func WithPeriod(seconds int) Option {
	return func(a *Authenticator) {
		if seconds > 0 {
			a.period = seconds
		}
	}
}

// WithDigits sets the code length
func WithDigits(digits int) Option {
	return func(a *Authenticator) {
		if digits >= minDigits && digits <= maxDigits {
			a.digits = digits
			a.digitsMod = uint32(math.Pow10(digits))
		}
	}
}

// WithQRSize sets the provisioning QR image size in pixels
func WithQRSize(size int) Option {
	return func(a *Authenticator) {
		if size > 0 {
			a.qrSize = size
		}
	}
}

// WithWindow sets how many adjacent periods are accepted, tolerating clock
// drift between server and device
func WithWindow(window int) Option {
	return func(a *Authenticator) {
		if window >= 0 && window <= maxWindow {
			a.window = window
		}
	}
}

// New creates an authenticator with RFC 6238 defaults
func New(opts ...Option) *Authenticator {
	a := &Authenticator{
		secretSize: defaultSecretSize,
		period:     defaultPeriod,
		digits:     defaultDigits,
		qrSize:     defaultQRSize,
		window:     defaultWindow,
		digitsMod:  uint32(math.Pow10(defaultDigits)),
		encoder:    base32.StdEncoding.WithPadding(base32.NoPadding),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateSecret returns a fresh base32-encoded shared secret
func (a *Authenticator) GenerateSecret() (string, error) {
	secret := make([]byte, a.secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return a.encoder.EncodeToString(secret), nil
}

// GenerateCode returns the code for a secret at the given time
func (a *Authenticator) GenerateCode(secret string, at time.Time) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	return a.codeAt(secret, at.Unix())
}

// Validate checks a code against the secret, accepting the configured
// number of adjacent periods. Comparison is constant-time.
func (a *Authenticator) Validate(secret, code string, at time.Time) (bool, error) {
	if secret == "" {
		return false, ErrEmptySecret
	}
	if code == "" {
		return false, ErrEmptyCode
	}

	now := at.Unix()
	for i := -a.window; i <= a.window; i++ {
		expected, err := a.codeAt(secret, now+int64(i*a.period))
		if err != nil {
			return false, err
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// ProvisioningURI builds the otpauth URI an authenticator app enrolls from
func (a *Authenticator) ProvisioningURI(account, issuer, secret string) (string, error) {
	if account == "" {
		return "", ErrEmptyAccount
	}
	if issuer == "" {
		return "", ErrEmptyIssuer
	}
	if secret == "" {
		return "", ErrEmptySecret
	}

	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", issuer)
	params.Set("algorithm", "SHA1")
	params.Set("digits", strconv.Itoa(a.digits))
	params.Set("period", strconv.Itoa(a.period))

	return "otpauth://totp/" + url.QueryEscape(account) + "?" + params.Encode(), nil
}

// ProvisioningQR renders the provisioning URI as a PNG image
func (a *Authenticator) ProvisioningQR(account, issuer, secret string) ([]byte, error) {
	uri, err := a.ProvisioningURI(account, issuer, secret)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(uri, qrcode.Medium, a.qrSize)
}

func (a *Authenticator) codeAt(secret string, timestamp int64) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := make([]byte, 8)
	binary.BigEndian.PutUint64(counter, uint64(timestamp)/uint64(a.period))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter)
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226
	offset := sum[len(sum)-1] & 0x0F
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF

	return fmt.Sprintf("%0*d", a.digits, code%a.digitsMod), nil
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := strings.ToUpper(strings.TrimSpace(secret))
	if pad := len(normalized) % 8; pad != 0 {
		normalized += strings.Repeat("=", 8-pad)
	}
	decoded, err := base32.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSecretDecode, err)
	}
	return decoded, nil
}
