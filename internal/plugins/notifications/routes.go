package notifications

import (
	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// RegisterRoutes sets up notification routes. Listing requires a session so
// the caller's targeted notifications can be resolved; creation is open to
// any client (internal tools post broadcasts through it).
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	e.POST("/api/notifications", h.Create)
	e.GET("/api/notifications", h.List, auth.RequireAuth(authSvc))
}
