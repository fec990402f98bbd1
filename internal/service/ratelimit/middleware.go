package ratelimit

import (
	xhttp "MyPay/pkg/http"

	"github.com/labstack/echo/v4"
)

// Middleware rejects a client with 429 once its bucket is empty.
// Clients are keyed by their real IP.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many predictions, slow down"))
			}
			return next(c)
		}
	}
}
