package admin

import (
	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// RegisterRoutes sets up all admin routes. The whole group sits behind
// RequireAuth + RequireAdmin, so handlers never re-check the role.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	g := e.Group("/api/admin",
		auth.RequireAuth(authSvc),
		auth.RequireAdmin(),
	)

	g.GET("/users", h.Users)
	g.PUT("/users/:id/admin", h.SetAdmin)
}
