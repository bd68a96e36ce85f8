package notifications

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// Handler handles HTTP requests for notifications.
type Handler struct {
	service NotificationService
}

// NewHandler creates a new notifications handler with the given service.
func NewHandler(service NotificationService) *Handler {
	return &Handler{service: service}
}

// Create creates a notification (POST /api/notifications). With a user_id the
// notification targets that user; without one it is a broadcast.
func (h *Handler) Create(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}

	n, err := h.service.Create(c.Request().Context(), CreateInput{
		UserID:  req.UserID,
		Message: req.Message,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, n)
}

// List returns the caller's notifications plus broadcasts, newest first
// (GET /api/notifications).
func (h *Handler) List(c echo.Context) error {
	list, err := h.service.ListForUser(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}

	if list == nil {
		list = []Notification{}
	}
	return c.JSON(http.StatusOK, list)
}
