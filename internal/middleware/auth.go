package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"userdir-service/internal/httperr"
	"userdir-service/pkg/jwtutil"
	"userdir-service/pkg/logger"
	"userdir-service/prometheus"
)

// CookieName is the cookie that carries the signed session claim
const CookieName = "access_token"

// userKey is the Echo context key for the decoded session claim
const userKey = "user"

// VerifyToken requires a valid, signature-verified session claim in the
// request's access_token cookie. On success the decoded claim is attached
// to the request context.
func VerifyToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		cookie, err := c.Cookie(CookieName)
		if err != nil {
			log.Error("Missing access token cookie")
			prometheus.RecordAuthError("missing_token")
			return httperr.Unauthenticated("You are not authenticated!")
		}

		claims, err := jwtutil.ValidateToken(cookie.Value)
		if err != nil {
			log.Error("Invalid session token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return httperr.Forbidden("Token is not valid!")
		}

		c.Set(userKey, claims)
		return next(c)
	}
}

// VerifyAdmin additionally requires isAdmin to be set in the session claim.
func VerifyAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		cookie, err := c.Cookie(CookieName)
		if err != nil {
			log.Error("Missing access token cookie")
			prometheus.RecordAuthError("missing_token")
			return httperr.Unauthenticated("You are not authenticated!")
		}

		claims, err := jwtutil.ValidateToken(cookie.Value)
		if err != nil {
			log.Error("Session token verification failed", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return httperr.Forbidden("Token verification failed!")
		}

		c.Set(userKey, claims)

		if !claims.IsAdmin {
			log.Warn("Non-admin access to admin route", zap.String("email", claims.Email))
			prometheus.RecordAuthError("not_admin")
			return httperr.Forbidden("You are not authorized!")
		}

		return next(c)
	}
}

// SessionFromContext returns the decoded session claim attached by
// VerifyToken or VerifyAdmin, or nil if the route is unauthenticated.
func SessionFromContext(c echo.Context) *jwtutil.SessionClaims {
	claims, _ := c.Get(userKey).(*jwtutil.SessionClaims)
	return claims
}
