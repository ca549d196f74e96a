package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "QuantFuse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a handler panic into a 500 envelope. The stack is logged,
// never returned to the client.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				l.Error("handler panic",
					applogger.Error(perr),
					applogger.String("route", c.Path()),
					applogger.String("request_id", requestID(c)),
					applogger.String("stack", string(debug.Stack())),
				)
				if c.Response().Committed {
					err = nil
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"status":     http.StatusInternalServerError,
					"message":    "Internal Server Error",
					"request_id": requestID(c),
				})
			}()
			return next(c)
		}
	}
}
