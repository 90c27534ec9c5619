package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/bnema/zerowrap"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/bnema/ferry/internal/adapters/dto"
)

// ContextKeySubject is the echo context key holding the "sub" claim of an
// accepted JWT.
const ContextKeySubject = "auth_subject"

// Auth lists the bearer credentials the event route accepts: a shared
// static token, HMAC-signed JWTs, or both. With neither set the check is
// disabled.
type Auth struct {
	Token     string
	JWTSecret string
	// JWTIssuer, when set, must match the "iss" claim.
	JWTIssuer string
}

// Enabled reports whether any credential is configured.
func (a Auth) Enabled() bool {
	return a.Token != "" || a.JWTSecret != ""
}

// BearerToken requires "Authorization: Bearer <credential>" matching auth.
// JWTs must carry an expiry.
func BearerToken(auth Auth, log zerowrap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !auth.Enabled() {
			return next
		}
		return func(c echo.Context) error {
			provided, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if ok && auth.Token != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(auth.Token)) == 1 {
				return next(c)
			}
			if ok && auth.JWTSecret != "" {
				sub, err := auth.parseJWT(provided)
				if err == nil {
					c.Set(ContextKeySubject, sub)
					return next(c)
				}
				log.Debug().Err(err).Msg("bearer JWT rejected")
			}

			log.Warn().
				Str(zerowrap.FieldLayer, "adapter").
				Str(zerowrap.FieldAdapter, "http").
				Str(zerowrap.FieldMethod, c.Request().Method).
				Str(zerowrap.FieldPath, c.Request().URL.Path).
				Bool("has_auth_header", c.Request().Header.Get(echo.HeaderAuthorization) != "").
				Msg("unauthorized webhook request")

			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="ferry"`)
			return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		}
	}
}

// parseJWT validates raw and returns its subject.
func (a Auth) parseJWT(raw string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}
	if a.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(a.JWTIssuer))
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return []byte(a.JWTSecret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}
