package activities

import (
	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// RegisterRoutes sets up activity routes. Every route needs a session; the
// caller's identity scopes both logging and listing.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	g := e.Group("/api/activities", auth.RequireAuth(authSvc))
	g.GET("", h.List)
	g.POST("", h.Create)
}
