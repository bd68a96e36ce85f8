package activities

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// Handler handles HTTP requests for activities.
type Handler struct {
	service ActivityService
}

// NewHandler creates a new activities handler with the given service.
func NewHandler(service ActivityService) *Handler {
	return &Handler{service: service}
}

// Create logs an activity for the caller (POST /api/activities).
func (h *Handler) Create(c echo.Context) error {
	var req CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}

	a, err := h.service.Create(c.Request().Context(), CreateInput{
		UserID:      auth.GetUserID(c),
		ChallengeID: req.ChallengeID,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, a)
}

// List returns the caller's activities (GET /api/activities).
func (h *Handler) List(c echo.Context) error {
	list, err := h.service.ListForUser(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return err
	}

	if list == nil {
		list = []Activity{}
	}
	return c.JSON(http.StatusOK, list)
}
