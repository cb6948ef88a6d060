package middleware_test

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/go-redis/redismock/v9"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/config"
    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/middleware"
)

func limiterConfig(capacity int) config.RateLimitConfig {
    return config.RateLimitConfig{Enabled: true, Capacity: capacity, Window: time.Minute, Prefix: "rl"}
}

// hit sends one request through the limiter as user 7 on GET /v1/rides.
func hit(t *testing.T, cfg config.RateLimitConfig, rdb *redis.Client) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/rides", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/rides")
    c.Set("user_id", 7)

    mw := middleware.RateLimit(cfg, rdb)
    handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
    require.NoError(t, handler(c))
    return rec
}

const testRateKey = "rl:7:GET /v1/rides"

func TestRateLimit_FirstHitArmsExpiry(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    mock.ExpectIncr(testRateKey).SetVal(1)
    mock.ExpectExpire(testRateKey, time.Minute).SetVal(true)

    rec := hit(t, limiterConfig(2), rdb)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
    assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_LaterHitsDoNotRefreshWindow(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    // Counter already exists: the only command issued is the INCR.
    // An EXPIRE here would push the window forward on every request,
    // which is how a slow-and-steady client ends up permanently
    // locked out.
    mock.ExpectIncr(testRateKey).SetVal(2)

    rec := hit(t, limiterConfig(2), rdb)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_OverCapacityRejectedWithRetryAfter(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    mock.ExpectIncr(testRateKey).SetVal(3)
    mock.ExpectTTL(testRateKey).SetVal(30 * time.Second)

    rec := hit(t, limiterConfig(2), rdb)

    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.Equal(t, "30", rec.Header().Get("Retry-After"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_RearmsCounterThatLostItsExpiry(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    mock.ExpectIncr(testRateKey).SetVal(3)
    mock.ExpectTTL(testRateKey).SetVal(-1) // key exists, no expiry
    mock.ExpectExpire(testRateKey, time.Minute).SetVal(true)

    rec := hit(t, limiterConfig(2), rdb)

    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_FailsOpenOnRedisError(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    mock.ExpectIncr(testRateKey).SetErr(assert.AnError)

    rec := hit(t, limiterConfig(2), rdb)

    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_DisabledIsPassThrough(t *testing.T) {
    cfg := config.RateLimitConfig{Enabled: false}
    rec := hit(t, cfg, nil)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
