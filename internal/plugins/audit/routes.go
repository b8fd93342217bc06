package audit

import (
	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/plugins/auth"
)

// RegisterRoutes sets up the activity feed. It is only visible to the
// account it belongs to.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	e.GET("/profile/activity", h.Activity, auth.RequireAuth(authSvc))
}
