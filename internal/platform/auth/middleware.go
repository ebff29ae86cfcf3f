package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionToucher reports whether a session is still alive and resets its
// idle countdown. session.Manager satisfies this interface.
type SessionToucher interface {
	Touch(ctx context.Context, id string) error
}

// RequireAuth returns middleware that guards a route group with bearer token
// authentication. The token must be valid and its session must still be
// alive; every successful check resets the session's idle countdown.
//
// On success the username and session ID are stored in the echo context.
func RequireAuth(manager *Manager, sessions SessionToucher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseToken(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			if sessions != nil {
				if err := sessions.Touch(c.Request().Context(), claims.SessionID); err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
				}
			}

			c.Set("username", claims.Username)
			c.Set("session_id", claims.SessionID)
			return next(c)
		}
	}
}
