package middleware

import (
	"time"

	applogger "QuantFuse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs every request with its route template and request id.
// 5xx responses log at error level, requests slower than slow at warn, and
// the rest at debug.
func RequestLogging(l *applogger.Logger, slow time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			latency := time.Since(start)
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("route", c.Path()),
				applogger.String("remote", c.RealIP()),
				applogger.String("request_id", requestID(c)),
				applogger.Int("status", res.Status),
				applogger.Duration("latency", latency),
			}
			switch {
			case res.Status >= 500:
				l.Error("http request failed", fields...)
			case slow > 0 && latency >= slow:
				l.Warn("http request slow", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
