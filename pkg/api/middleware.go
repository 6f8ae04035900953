package api

import (
	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware ensures every request carries a request id. A
// client-supplied X-Request-ID is honored; otherwise one is generated.
// The id is echoed on the response header.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.New().String()
				c.Request().Header.Set(requestIDHeader, id)
			}
			c.Response().Header().Set(requestIDHeader, id)
			return next(c)
		}
	}
}

// requestID reads the request id placed by requestIDMiddleware.
func requestID(c *echo.Context) string {
	return c.Request().Header.Get(requestIDHeader)
}

// securityHeaders returns middleware that sets standard security response headers.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			return next(c)
		}
	}
}
