package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/villa-booking/internal/config"
	"github.com/iliyamo/villa-booking/internal/utils"
)

const secret = "mw-secret"

func protected() *echo.Echo {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		return c.String(http.StatusOK, Subject(c))
	}, JWTAuth(secret), RequireRole(utils.RoleAdmin))
	return e
}

func call(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := protected()

	assert.Equal(t, http.StatusUnauthorized, call(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, "garbage").Code)

	good, err := utils.NewAccessToken(secret, "owner@villa.test", utils.RoleAdmin, 5)
	require.NoError(t, err)
	rec := call(e, good.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner@villa.test", rec.Body.String())

	forged, err := utils.NewAccessToken("other-secret", "owner@villa.test", utils.RoleAdmin, 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(e, forged.Token).Code)

	expired, err := utils.NewAccessToken(secret, "owner@villa.test", utils.RoleAdmin, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(e, expired.Token).Code)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "role": utils.RoleAdmin})
	raw, err := noExp.SignedString([]byte(secret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(e, raw).Code)

	guest, err := utils.NewAccessToken(secret, "guest@villa.test", "GUEST", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(e, guest.Token).Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/booking", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/booking")

	cfg := config.RateLimitConfig{Prefix: "villa:rl"}
	cfg.KeyStrategy = "ip"
	assert.Equal(t, "villa:rl:ip:203.0.113.7", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip_route"
	assert.Equal(t, "villa:rl:ip:203.0.113.7:route:POST /api/booking", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip_user_route"
	assert.Equal(t, "villa:rl:ip:203.0.113.7:user:anon:route:POST /api/booking", buildRateKey(cfg, c))

	c.Set(ContextSubject, "owner@villa.test")
	assert.Equal(t, "villa:rl:ip:203.0.113.7:user:owner@villa.test:route:POST /api/booking", buildRateKey(cfg, c))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(-5))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 6, retryAfterSeconds(6000))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestWithoutRedisEverythingPassesThrough(t *testing.T) {
	e := echo.New()
	hits := 0
	h := func(c echo.Context) error { hits++; return c.NoContent(http.StatusNoContent) }
	limit := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil)
	cache := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, nil)
	e.GET("/x", h, limit, cache)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 3, hits)
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Request-Id": {"abc"}}
	body := []byte(`{"success":true}`)
	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	if diff := cmp.Diff(hdr, gotHdr); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, body, gotBody)

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "villa:cache", KeyStrategy: "route_query"}
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		return cacheKeyFrom(cfg, c)
	}
	assert.Equal(t, key("/api/villas/a"), key("/api/villas/a"))
	assert.NotEqual(t, key("/api/villas/a"), key("/api/villas/b"))
	assert.NotEqual(t, key("/api/villas?x=1"), key("/api/villas?x=2"))
	assert.Regexp(t, `^villa:cache:[0-9a-f]{40}$`, key("/api/villas"))

	cfg.KeyStrategy = "path"
	assert.Equal(t, key("/api/villas?x=1"), key("/api/villas?x=2"))
}

func TestCaptureWriterTruncates(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 8}
	_, _ = cw.Write([]byte("1234"))
	assert.False(t, cw.truncated)
	_, _ = cw.Write([]byte("56789"))
	assert.True(t, cw.truncated)
	assert.Equal(t, "123456789", rec.Body.String(), "client still gets the full body")
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway, "upstream") })

	for _, p := range []string{"/ok", "/boom", "/missing"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusBadGateway), entries[1].ContextMap()["status"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "/missing", entries[2].ContextMap()["path"])
	_, hasLatency := entries[0].ContextMap()["latency"]
	assert.True(t, hasLatency)
}
