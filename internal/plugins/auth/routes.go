package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/middleware"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Register/login are public -- the RequireAuth/RequireAdmin middleware is
// exported separately for other plugins to use on their route groups.
//
// POST endpoints are rate-limited to prevent brute-force and credential
// stuffing attacks: 10 attempts per IP per minute for login, 5 for register.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/users/register", h.Register, middleware.RateLimit(5, time.Minute))
	e.POST("/api/users/login", h.Login, middleware.RateLimit(10, time.Minute))

	// The React client historically used /api/auth/login; keep both paths.
	e.POST("/api/auth/login", h.Login, middleware.RateLimit(10, time.Minute))

	e.GET("/api/auth/verify", h.Verify)
	e.POST("/api/auth/logout", h.Logout)
}
