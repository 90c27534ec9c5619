// Package middleware provides echo middleware for the inbound HTTP adapter.
package middleware

import (
	"net"
	"net/http"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bnema/ferry/internal/adapters/dto"
)

// RequestLogger logs each request with zerowrap and attaches the logger to
// the request context for downstream handlers.
func RequestLogger(log zerowrap.Logger, trustedProxies []*net.IPNet) echo.MiddlewareFunc {
	attach := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(zerowrap.WithCtx(req.Context(), log)))
			return next(c)
		}
	}

	logRequest := echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.
				Str(zerowrap.FieldLayer, "adapter").
				Str(zerowrap.FieldAdapter, "http").
				Str("request_id", v.RequestID).
				Str(zerowrap.FieldMethod, v.Method).
				Str(zerowrap.FieldPath, v.URI).
				Str(zerowrap.FieldClientIP, ClientIP(c.Request(), trustedProxies)).
				Int(zerowrap.FieldStatus, v.Status).
				Dur(zerowrap.FieldDuration, v.Latency).
				Msg("HTTP request")
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return attach(logRequest(next))
	}
}

// PanicRecovery turns handler panics into a JSON 500.
func PanicRecovery(log zerowrap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str(zerowrap.FieldLayer, "adapter").
						Str(zerowrap.FieldAdapter, "http").
						Interface("panic", r).
						Str(zerowrap.FieldMethod, c.Request().Method).
						Str(zerowrap.FieldPath, c.Request().URL.Path).
						Msg("panic recovered")
					err = c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
						Error: "Internal Server Error",
					})
				}
			}()
			return next(c)
		}
	}
}
