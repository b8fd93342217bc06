package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/plugins/audit"
	"github.com/gobarber/gobarber/internal/plugins/auth"
)

// healthTimeout bounds the dependency pings behind /healthz.
const healthTimeout = 2 * time.Second

// RegisterRoutes builds the plugin dependency graph and registers every
// route. This is the single place where routes are aggregated.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	e.GET("/healthz", a.health)

	tokens, err := auth.NewTokenManager(a.Config.Auth.SecretKey, a.Config.Auth.Issuer, a.Config.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token manager: %w", err)
	}

	authRepo := auth.NewUserRepository(a.DB)
	authService := auth.NewAuthService(authRepo, auth.NewRedisSessionStore(a.Redis), tokens)

	// auth handlers record account events in the activity log.
	auditService := audit.NewAuditService(audit.NewAuditRepository(a.DB))
	auth.RegisterRoutes(a.background, e, auth.NewHandler(authService, auditService), authService)
	audit.RegisterRoutes(e, audit.NewHandler(auditService), authService)

	return nil
}

// health reports 200 when MariaDB and Redis both answer a ping, 503
// otherwise. Dependencies that were not configured are skipped.
func (a *App) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if a.DB != nil {
		checks["database"] = "ok"
		if err := a.DB.PingContext(ctx); err != nil {
			slog.Warn("health check: database unreachable", slog.Any("error", err))
			checks["database"] = "unreachable"
			healthy = false
		}
	}
	if a.Redis != nil {
		checks["redis"] = "ok"
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			slog.Warn("health check: redis unreachable", slog.Any("error", err))
			checks["redis"] = "unreachable"
			healthy = false
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
