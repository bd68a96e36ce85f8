package admin

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// Handler handles admin HTTP requests.
type Handler struct {
	service AdminService
}

// NewHandler creates a new admin handler.
func NewHandler(service AdminService) *Handler {
	return &Handler{service: service}
}

// usersResponse is the body returned by the user list endpoint.
type usersResponse struct {
	Users []auth.User `json:"users"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
}

// setAdminRequest holds the data submitted to PUT /api/admin/users/:id/admin.
type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// Users returns a paginated user list (GET /api/admin/users).
func (h *Handler) Users(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	users, total, err := h.service.ListUsers(c.Request().Context(), page)
	if err != nil {
		return err
	}

	if users == nil {
		users = []auth.User{}
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users, Total: total, Page: page})
}

// SetAdmin grants or revokes the admin role (PUT /api/admin/users/:id/admin).
func (h *Handler) SetAdmin(c echo.Context) error {
	var req setAdminRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}

	user, err := h.service.SetAdmin(c.Request().Context(), c.Param("id"), req.IsAdmin)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
