package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekyarra/moviesbyvivek/internal/config"
	"github.com/vivekyarra/moviesbyvivek/internal/utils"
)

const secret = "test-secret"

func whoami(c echo.Context) error {
	id, _ := UserID(c)
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "role": Role(c)})
}

func serve(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret), RequireRole(RoleCustomer))

	tok, err := utils.NewAccessToken(secret, 42, RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec := serve(e, tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42,"role":"CUSTOMER"}`, rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))

	assert.Equal(t, http.StatusUnauthorized, serve(e, "").Code)

	wrong, _ := utils.NewAccessToken("other", 42, RoleCustomer, time.Hour)
	assert.Equal(t, http.StatusUnauthorized, serve(e, wrong.Token).Code)

	expired, _ := utils.NewAccessToken(secret, 42, RoleCustomer, -time.Minute)
	assert.Equal(t, http.StatusUnauthorized, serve(e, expired.Token).Code)

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": RoleCustomer}).SignedString([]byte(secret))
	assert.Equal(t, http.StatusUnauthorized, serve(e, noSub).Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret), RequireRole(RoleAdmin))

	customer, _ := utils.NewAccessToken(secret, 1, RoleCustomer, time.Hour)
	assert.Equal(t, http.StatusForbidden, serve(e, customer.Token).Code)

	admin, _ := utils.NewAccessToken(secret, 1, RoleAdmin, time.Hour)
	assert.Equal(t, http.StatusOK, serve(e, admin.Token).Code)
}

func TestSubjectID(t *testing.T) {
	for in, want := range map[interface{}]uint64{"7": 7, float64(9): 9} {
		got, ok := subjectID(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	for _, bad := range []interface{}{"", "abc", "0", float64(-1), float64(1.5), nil} {
		_, ok := subjectID(bad)
		assert.False(t, ok, "%v", bad)
	}
}

func TestLimiterAndCacheDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami,
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
	)
	rec := serve(e, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload(bs[:6])
	assert.False(t, ok)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/orders")
	c.Set(userIDKey, uint64(5))

	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:ip:10.0.0.1:user:5:route:POST /v1/orders", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
}
