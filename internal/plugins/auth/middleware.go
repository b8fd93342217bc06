package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/apperror"
	"github.com/gobarber/gobarber/internal/middleware"
)

// Echo context keys for the authenticated session.
const (
	contextKeySession = "auth_session"
	contextKeyUserID  = "auth_user_id"
)

// RequireAuth returns middleware that validates the bearer token and stores
// the session in the Echo context. Missing or invalid tokens get a 401.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := middleware.BearerToken(c)
			if !ok {
				return apperror.NewUnauthorized("authentication required")
			}

			session, err := service.ValidateSession(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(contextKeySession, session)
			c.Set(contextKeyUserID, session.UserID)

			return next(c)
		}
	}
}

// GetSession returns the authenticated session, or nil when RequireAuth did
// not run.
func GetSession(c echo.Context) *Session {
	session, ok := c.Get(contextKeySession).(*Session)
	if !ok {
		return nil
	}
	return session
}

// GetUserID returns the authenticated user's ID, or "".
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
