// Package middleware provides HTTP middleware for the GoBarber API server.
// Middleware is applied globally in internal/app or per route inside a
// plugin's RegisterRoutes.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// requestIDHeader carries the per-request correlation id.
const requestIDHeader = "X-Request-ID"

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequestID returns the correlation id assigned by RequestLogger.
func RequestID(c echo.Context) string {
	return c.Response().Header().Get(requestIDHeader)
}
