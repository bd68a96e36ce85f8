package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/plugins/activities"
	"github.com/ecotrackapp/ecotrack/internal/plugins/admin"
	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
	"github.com/ecotrackapp/ecotrack/internal/plugins/challenges"
	"github.com/ecotrackapp/ecotrack/internal/plugins/notifications"
	"github.com/ecotrackapp/ecotrack/internal/realtime"
)

// RegisterRoutes wires every plugin together and registers all routes.
// This is the single place where dependencies between plugins are resolved;
// a new plugin gets its repository, service, and routes hooked up here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// auth: user records in MariaDB, sessions in Redis.
	userRepo := auth.NewUserRepository(a.DB)
	authSvc := auth.NewAuthService(userRepo, a.Redis, a.Config.Auth.SessionTTL)
	auth.RegisterRoutes(e, auth.NewHandler(authSvc))

	// notifications: persisted rows, fanned out through the broker.
	notifSvc := notifications.NewNotificationService(
		notifications.NewNotificationRepository(a.DB),
		a.Broker,
	)
	notifications.RegisterRoutes(e, notifications.NewHandler(notifSvc), authSvc)

	// challenges: admin-created, announced to everyone.
	challengeSvc := challenges.NewChallengeService(
		challenges.NewChallengeRepository(a.DB),
		notifSvc,
	)
	challenges.RegisterRoutes(e, challenges.NewHandler(challengeSvc), authSvc)

	// activities: user-logged, confirmed back to the user.
	activitySvc := activities.NewActivityService(
		activities.NewActivityRepository(a.DB),
		notifSvc,
	)
	activities.RegisterRoutes(e, activities.NewHandler(activitySvc), authSvc)

	// admin: user management on top of the auth repository.
	admin.RegisterRoutes(e, admin.NewHandler(admin.NewAdminService(userRepo)), authSvc)

	// Realtime channel. Token is optional; without one the connection only
	// receives broadcasts.
	e.GET("/ws", realtime.Handler(a.Broker, authSvc))

	// Health check endpoint for Docker health monitoring.
	e.GET("/healthz", a.healthz)
}

// healthz reports process liveness plus dependency reachability.
func (a *App) healthz(c echo.Context) error {
	ctx := c.Request().Context()

	status := "ok"
	code := http.StatusOK
	if err := a.DB.PingContext(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]any{
		"status":      status,
		"connections": a.Broker.ConnectionCount(),
	})
}
