package middleware

import (
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/mzokirovic/yol-yolakay-backend-sub000/internal/config"
)

// RateLimit returns a fixed-window request limiter backed by Redis.
// Each (user-or-IP, route) pair gets a counter; the expiry is armed
// exactly once, when the counter is created, so the window always
// rolls over on schedule no matter how often the client keeps
// hitting it.  Once the counter passes the configured capacity,
// requests are rejected with 429 until the window expires.  When
// limiting is disabled or no Redis client is available, the
// middleware is a pass-through.  Redis errors also pass the request
// through — the limiter protects capacity, it must never become the
// outage itself.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ctx := c.Request().Context()
            key := rateKey(cfg.Prefix, c)

            n, err := rdb.Incr(ctx, key).Result()
            if err != nil {
                return next(c)
            }
            if n == 1 {
                // First hit of the window creates the counter; only
                // that hit arms the expiry.
                _ = rdb.Expire(ctx, key, cfg.Window).Err()
            }

            remaining := int64(cfg.Capacity) - n
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if n > int64(cfg.Capacity) {
                retry := int(cfg.Window / time.Second)
                if ttl, err := rdb.TTL(ctx, key).Result(); err == nil {
                    if ttl > 0 {
                        retry = int(ttl / time.Second)
                    } else {
                        // The counter lost its expiry (crash between
                        // INCR and EXPIRE).  Re-arm it, otherwise the
                        // key never rolls over and the client stays
                        // locked out.
                        _ = rdb.Expire(ctx, key, cfg.Window).Err()
                    }
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "retry_after": retry,
                })
            }
            return next(c)
        }
    }
}

// rateKey scopes the counter to the caller and the route, so one
// chatty endpoint cannot consume the budget of another.
func rateKey(prefix string, c echo.Context) string {
    who := "anon"
    if v := c.Get("user_id"); v != nil {
        who = fmt.Sprint(v)
    } else if ip := c.RealIP(); ip != "" {
        who = ip
    }
    return fmt.Sprintf("%s:%s:%s %s", prefix, who, c.Request().Method, c.Path())
}
