package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/trustcore/core/cookie"
	"github.com/kochabx/trustcore/core/identity"
	"github.com/kochabx/trustcore/core/token"
	"github.com/kochabx/trustcore/core/trust"
)

const (
	testIssuer      = "https://issuer.example"
	testAudience    = "trustcore"
	testTokenSecret = "0123456789abcdef0123456789abcdef"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestCore(t *testing.T) *trust.Core {
	t.Helper()
	core, err := trust.New(&trust.Config{
		Token: token.Config{
			Issuer:   testIssuer,
			Audience: testAudience,
			Keys:     []token.VerificationKey{{ID: "k1", Secret: testTokenSecret}},
		},
		Cookie: cookie.Config{Secret: "fedcba9876543210fedcba9876543210"},
	}, trust.WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(core.Close)
	return core
}

func mintBearer(t *testing.T, role string) string {
	t.Helper()
	now := time.Now()
	claims := &token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			Subject:   "user-1",
			ID:        "jti-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString([]byte(testTokenSecret))
	require.NoError(t, err)
	return signed
}

func setupRouter(core *trust.Core, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(Auth(AuthConfig{Core: core, SkipPaths: []string{"/health"}}))
	for _, h := range extra {
		r.Use(h)
	}
	handler := func(c *gin.Context) {
		if id, ok := GetIdentity(c.Request.Context()); ok {
			c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "risk": id.RiskScore})
			return
		}
		c.JSON(http.StatusOK, gin.H{"skipped": true})
	}
	r.GET("/health", handler)
	r.GET("/me", handler)
	r.POST("/update", handler)
	return r
}

func TestAuthSkipPath(t *testing.T) {
	r := setupRouter(newTestCore(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skipped")
}

func TestAuthNoCredentials(t *testing.T) {
	r := setupRouter(newTestCore(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// The body never reveals which check failed
	assert.Contains(t, w.Body.String(), "authentication required")
}

func TestAuthBearer(t *testing.T) {
	core := newTestCore(t)
	r := setupRouter(core)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintBearer(t, "staff"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthBearerInvalid(t *testing.T) {
	r := setupRouter(newTestCore(t))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer forged.token.value")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthCookieSession(t *testing.T) {
	core := newTestCore(t)
	r := setupRouter(core)

	bundle, _, err := core.Login("user-7", trust.LoginContext{ClientIP: "192.0.2.1", UserAgent: "test-agent"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range bundle.Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-7")
}

func TestAuthCookieMutatingRequiresCSRF(t *testing.T) {
	core := newTestCore(t)
	r := setupRouter(core)

	bundle, _, err := core.Login("user-7", trust.LoginContext{ClientIP: "192.0.2.1", UserAgent: "test-agent"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/update", nil)
	for _, c := range bundle.Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Echoing the CSRF cookie in the header passes
	req = httptest.NewRequest(http.MethodPost, "/update", nil)
	for _, c := range bundle.Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set(core.CSRFHeader(), bundle.CSRFToken())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	core := newTestCore(t)
	r := setupRouter(core, RequireRole(identity.RoleClinician))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintBearer(t, "staff"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintBearer(t, "admin"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPathMatcher(t *testing.T) {
	pm := NewPathMatcher([]string{"/health", "/docs/**", "/api/*/public"})

	assert.True(t, pm.Match("/health"))
	assert.True(t, pm.Match("/docs"))
	assert.True(t, pm.Match("/docs/swagger/index.html"))
	assert.True(t, pm.Match("/api/v1/public"))
	assert.False(t, pm.Match("/api/v1/private"))
	assert.False(t, pm.Match("/healthz"))
}
