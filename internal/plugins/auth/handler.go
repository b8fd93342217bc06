package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/apperror"
	"github.com/gobarber/gobarber/internal/middleware"
)

// Account event names passed to ActivityLogger.
const (
	ActivityRegistered     = "user.registered"
	ActivitySessionCreated = "session.created"
	ActivitySessionEnded   = "session.destroyed"
	ActivityProfileUpdated = "profile.updated"
)

// ActivityLogger records account events after they succeed. Failures are
// the logger's problem and never fail the request.
type ActivityLogger interface {
	LogActivity(ctx context.Context, userID, action, ip, userAgent string)
}

// Handler handles the JSON auth endpoints. Handlers bind the request, call
// the service, and write the response. No business logic lives here.
type Handler struct {
	service  AuthService
	activity ActivityLogger
}

// NewHandler creates a new auth handler. activity may be nil.
func NewHandler(service AuthService, activity ActivityLogger) *Handler {
	return &Handler{service: service, activity: activity}
}

func (h *Handler) logActivity(c echo.Context, userID, action string) {
	if h.activity == nil || userID == "" {
		return
	}
	h.activity.LogActivity(c.Request().Context(), userID, action, c.RealIP(), c.Request().UserAgent())
}

// Register creates an account (POST /users).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.service.Register(c.Request().Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.logActivity(c, user.ID, ActivityRegistered)
	return c.JSON(http.StatusCreated, user)
}

// Login opens a session (POST /sessions).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.logActivity(c, user.ID, ActivitySessionCreated)
	return c.JSON(http.StatusOK, SessionResponse{User: user, Token: token})
}

// Logout destroys the caller's session (DELETE /sessions).
func (h *Handler) Logout(c echo.Context) error {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	if err := h.service.DestroySession(c.Request().Context(), token); err != nil {
		return err
	}

	h.logActivity(c, GetUserID(c), ActivitySessionEnded)
	return c.NoContent(http.StatusNoContent)
}

// Profile returns the signed-in user (GET /profile).
func (h *Handler) Profile(c echo.Context) error {
	user, err := h.service.GetProfile(c.Request().Context(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the signed-in user's name and email (PUT /profile).
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), GetUserID(c), UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}

	h.logActivity(c, user.ID, ActivityProfileUpdated)
	return c.JSON(http.StatusOK, user)
}
