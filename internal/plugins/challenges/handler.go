package challenges

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// Handler handles HTTP requests for challenges.
type Handler struct {
	service ChallengeService
}

// NewHandler creates a new challenges handler with the given service.
func NewHandler(service ChallengeService) *Handler {
	return &Handler{service: service}
}

// Create creates a challenge (POST /api/challenges). Admin only; the route
// group enforces RequireAdmin before this runs.
func (h *Handler) Create(c echo.Context) error {
	var req CreateChallengeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}

	startDate, endDate, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	ch, err := h.service.Create(c.Request().Context(), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedBy:   auth.GetUserID(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ch)
}

// Get returns one challenge (GET /api/challenges/:id).
func (h *Handler) Get(c echo.Context) error {
	ch, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ch)
}

// List returns all challenges (GET /api/challenges).
func (h *Handler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	if list == nil {
		list = []Challenge{}
	}
	return c.JSON(http.StatusOK, list)
}

// parseDates parses the optional start/end date strings. Either may be
// empty; both "2006-01-02" and full RFC 3339 timestamps are accepted.
func parseDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewValidation("start_date is not a valid date")
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewValidation("end_date is not a valid date")
	}
	return startDate, endDate, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
