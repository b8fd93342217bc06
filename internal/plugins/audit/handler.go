package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/plugins/auth"
)

// Handler serves the activity feed. Handlers are thin: bind request, call
// service, write response.
type Handler struct {
	service AuditService
}

// NewHandler creates a new audit handler.
func NewHandler(service AuditService) *Handler {
	return &Handler{service: service}
}

// Activity returns the signed-in user's recent account events
// (GET /profile/activity?page=N).
func (h *Handler) Activity(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	entries, total, err := h.service.Activity(c.Request().Context(), auth.GetUserID(c), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ActivityPage{
		Entries: entries,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}
