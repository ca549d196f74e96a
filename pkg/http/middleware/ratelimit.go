package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower is a keyed token bucket.
type Allower interface {
	Allow(key string, capacity, refillPerSec float64) bool
}

// RateLimit rejects requests with 429 once a client (by real IP) exceeds
// rps sustained with the given burst. A non-positive rps disables it.
func RateLimit(l Allower, rps float64, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = 1
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if l == nil || rps <= 0 {
			return next
		}
		return func(c echo.Context) error {
			if !l.Allow("client:"+c.RealIP(), float64(burst), rps) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": http.StatusText(http.StatusTooManyRequests),
				})
			}
			return next(c)
		}
	}
}
