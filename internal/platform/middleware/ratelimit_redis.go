package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// limitScript atomically increments the counter for a key and sets its expiry
// on first use. Returns 0 when the window limit is exceeded.
const limitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = redis.call("INCR", key)
if current == 1 then
    redis.call("EXPIRE", key, window)
end

if current > limit then
    return 0
else
    return 1
end
`

// RedisRateLimit returns a fixed-window rate limiter backed by Redis, so the
// limit holds across multiple server instances. On Redis errors the request
// is allowed through: losing rate limiting briefly beats failing every
// request.
func RedisRateLimit(client *redis.Client, limit int, window time.Duration, logger zerolog.Logger) echo.MiddlewareFunc {
	script := redis.NewScript(limitScript)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ratelimit:" + rateLimitKey(c)
			ctx := c.Request().Context()

			result, err := script.Run(ctx, client,
				[]string{key}, limit, int(window.Seconds())).Int()
			if err != nil {
				logger.Error().Err(err).Msg("redis rate limit check failed")
				return next(c)
			}
			if result == 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			return next(c)
		}
	}
}
