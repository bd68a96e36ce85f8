package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
)

// Handler handles HTTP requests for authentication. Handlers are thin: they
// bind the request, call the service, and render the JSON response. No
// business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// tokenResponse is the body returned by register and login.
type tokenResponse struct {
	UserID    string `json:"user_id"`
	AuthToken string `json:"auth_token"`
}

// Register creates a new account (POST /api/users/register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}

	if msg := validateRegisterRequest(&req); msg != "" {
		return apperror.NewValidation(msg)
	}

	user, token, err := h.service.Register(c.Request().Context(), RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, tokenResponse{
		UserID:    user.ID,
		AuthToken: token,
	})
}

// Login authenticates an existing account (POST /api/users/login and
// POST /api/auth/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperror.NewValidation("email and password are required")
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{
		UserID:    user.ID,
		AuthToken: token,
	})
}

// Verify resolves the bearer token to its user (GET /api/auth/verify).
// Clients call this at startup to rehydrate a persisted session.
func (h *Handler) Verify(c echo.Context) error {
	session, err := h.service.Verify(c.Request().Context(), BearerToken(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"user": session})
}

// Logout revokes the bearer token server-side (POST /api/auth/logout).
func (h *Handler) Logout(c echo.Context) error {
	token := BearerToken(c)
	if token == "" {
		return apperror.NewUnauthenticated("authentication required")
	}

	if err := h.service.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// --- Validation helpers ---

// validateRegisterRequest performs basic server-side validation on the
// registration request. Returns an error message or empty string.
func validateRegisterRequest(req *RegisterRequest) string {
	if req.Email == "" {
		return "email is required"
	}
	if !strings.Contains(req.Email, "@") {
		return "email is not valid"
	}
	if req.Username == "" {
		return "username is required"
	}
	if len(req.Username) < 2 {
		return "username must be at least 2 characters"
	}
	if len(req.Username) > 100 {
		return "username must be at most 100 characters"
	}
	if req.Password == "" {
		return "password is required"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if len(req.Password) > 128 {
		return "password must be at most 128 characters"
	}
	return ""
}
