package middleware

import (
	"net"
	"net/http"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"

	"github.com/bnema/ferry/internal/adapters/dto"
)

// loopback is always allowed so local tooling can reach the webhook.
var loopback = ParseNetworks([]string{"127.0.0.0/8", "::1"})

// NetworkAllowlist restricts access to the given networks. An empty
// allowlist lets all traffic through.
func NetworkAllowlist(allowed, trustedProxies []*net.IPNet, log zerowrap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if len(allowed) == 0 {
			return next
		}
		return func(c echo.Context) error {
			clientIP := ClientIP(c.Request(), trustedProxies)
			if InNetworks(clientIP, loopback) || InNetworks(clientIP, allowed) {
				return next(c)
			}

			log.Warn().
				Str(zerowrap.FieldLayer, "adapter").
				Str(zerowrap.FieldAdapter, "http").
				Str(zerowrap.FieldMethod, c.Request().Method).
				Str(zerowrap.FieldPath, c.Request().URL.Path).
				Str(zerowrap.FieldClientIP, clientIP).
				Msg("access denied by network allowlist")

			return c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
		}
	}
}
