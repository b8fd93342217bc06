// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (DB pool, Redis client, Echo instance)
// and wires the auth and audit plugins onto it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gobarber/gobarber/internal/apperror"
	"github.com/gobarber/gobarber/internal/config"
	"github.com/gobarber/gobarber/internal/middleware"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool.
	DB *sql.DB

	// Redis holds sessions.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// background lives until Shutdown and bounds goroutines started by
	// route setup, such as the rate limiter sweeps.
	background context.Context
	stop       context.CancelFunc
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// We log our own startup line.
	e.HideBanner = true
	e.HidePort = true

	// c.RealIP() must return the client, not the proxy, for rate limiting.
	middleware.TrustedProxies(e, middleware.DefaultTrustedProxies)

	background, stop := context.WithCancel(context.Background())
	app := &App{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Echo:       e,
		background: background,
		stop:       stop,
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// The request logger is outermost so it sees the status written for
// recovered panics too.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.SecurityHeaders())
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: a.Config.CORSOrigins,
	}))
}

// errorHandler maps errors to {"error": ..., "message": ...} JSON bodies.
// AppErrors keep their code and message, Echo's own HTTP errors (404, 405)
// keep their code, and everything else becomes a generic 500.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var body *apperror.AppError
	if appErr, ok := apperror.As(err); ok {
		body = appErr
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
				slog.String("request_id", middleware.RequestID(c)),
			)
		}
	} else if echoErr, ok := err.(*echo.HTTPError); ok {
		body = &apperror.AppError{
			Code:    echoErr.Code,
			Type:    errorType(echoErr.Code),
			Message: http.StatusText(echoErr.Code),
		}
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			body.Message = msg
		}
	} else {
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
			slog.String("request_id", middleware.RequestID(c)),
		)
		body = apperror.NewInternal(err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(body.Code)
	} else {
		writeErr = c.JSON(body.Code, body)
	}
	if writeErr != nil {
		slog.Warn("failed to write error response", slog.Any("error", writeErr))
	}
}

// errorType returns the machine-readable classifier for statuses Echo
// raises itself.
func errorType(code int) string {
	switch code {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusRequestEntityTooLarge:
		return "request_too_large"
	default:
		if code >= http.StatusInternalServerError {
			return "internal_error"
		}
		return "error"
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting GoBarber API",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}

// Shutdown stops accepting connections, waits for in-flight requests and
// stops background work started by RegisterRoutes.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.stop()
	return a.Echo.Shutdown(ctx)
}
