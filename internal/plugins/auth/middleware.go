package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
)

// Context keys for storing session data in Echo context. Other plugins
// use these keys (via the exported getter functions below) to access
// the authenticated user's information.
const (
	contextKeySession = "auth_session"
	contextKeyUserID  = "auth_user_id"
)

// RequireAuth returns middleware that validates the bearer token and
// injects session data into the request context. If the token is missing,
// invalid, or expired, the wrapped handler never runs and the client
// receives a 401.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return apperror.NewUnauthenticated("authentication required")
			}

			session, err := service.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}

			// Store session data in context for downstream handlers.
			c.Set(contextKeySession, session)
			c.Set(contextKeyUserID, session.UserID)

			return next(c)
		}
	}
}

// RequireAdmin returns middleware that restricts a route to administrators.
// It must be stacked after RequireAuth. A valid session without the admin
// flag gets a 403, which is deliberately distinct from the 401 an
// unauthenticated caller receives.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil {
				return apperror.NewUnauthenticated("authentication required")
			}
			if !session.IsAdmin {
				return apperror.NewForbidden("administrator access required")
			}
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header. Returns
// empty string if the header is missing or not a Bearer scheme.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// --- Exported getters for other plugins ---

// GetSession retrieves the authenticated session from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func GetSession(c echo.Context) *Session {
	session, ok := c.Get(contextKeySession).(*Session)
	if !ok {
		return nil
	}
	return session
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
