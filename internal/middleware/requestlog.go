package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
)

// RequestLogger writes one structured line per request.  Errors are
// handed to echo's error handler first so the logged status is final.
func RequestLogger(l *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			l.LogHTTPRequest(c, time.Since(start))
			return nil
		}
	}
}
