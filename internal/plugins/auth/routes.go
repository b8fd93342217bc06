package auth

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/middleware"
)

// RegisterRoutes sets up the auth routes. Account creation and sign-in are
// public and rate-limited per IP: 5 per minute for POST /users, 10 for
// POST /sessions. Everything else needs a bearer token. ctx bounds the
// limiters' background sweeps.
func RegisterRoutes(ctx context.Context, e *echo.Echo, h *Handler, service AuthService) {
	// Keyed by c.RealIP(), which only trusts X-Forwarded-For from the
	// configured proxies, so clients cannot pick their own bucket.
	e.POST("/users", h.Register, middleware.RateLimit(ctx, 5, time.Minute))
	e.POST("/sessions", h.Login, middleware.RateLimit(ctx, 10, time.Minute))

	// Per-route rather than a "" group so unknown paths still 404.
	requireAuth := RequireAuth(service)
	e.DELETE("/sessions", h.Logout, requireAuth)
	e.GET("/profile", h.Profile, requireAuth)
	e.PUT("/profile", h.UpdateProfile, requireAuth)
}
