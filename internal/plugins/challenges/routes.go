package challenges

import (
	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// RegisterRoutes sets up challenge routes. Reading requires a session;
// creating additionally requires the admin role.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	g := e.Group("/api/challenges", auth.RequireAuth(authSvc))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, auth.RequireAdmin())
}
