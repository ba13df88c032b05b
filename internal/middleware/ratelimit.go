package middleware

import (
	"fmt"

	"forge-api/internal/metrics"
	"forge-api/internal/setup"
	"forge-api/internal/shared"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// NewRateLimitMiddleware enforces a fixed-window per-IP request budget backed
// by redis. Fails open when redis is unreachable.
func NewRateLimitMiddleware(rdb *redis.Client, rpm int) echo.MiddlewareFunc {
	if rpm <= 0 {
		rpm = shared.DefaultRateLimitRPM
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(cc echo.Context) error {
			c := cc.(*setup.Context)
			ctx := c.Request().Context()

			key := fmt.Sprintf("v1:ratelimit:ip:%s", c.RealIP())
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				c.Log.Warnw("Rate limit check failed, allowing request", "error", err)
				return next(c)
			}
			if count == 1 {
				if err := rdb.Expire(ctx, key, shared.RateLimitWindow).Err(); err != nil {
					c.Log.Warnw("Failed to set rate limit window", "error", err)
				}
			}

			if count > int64(rpm) {
				metrics.RateLimitedRequests.WithLabelValues(c.Path()).Inc()
				c.Log.Infow("Rate limited request", "ip", c.RealIP(), "count", count)
				return c.JSON(shared.ErrRateLimited.StatusCode, shared.GenerationResponse{
					Success: false,
					Error:   shared.ErrRateLimited.Err.Error(),
				})
			}
			return next(c)
		}
	}
}
