package auth

import (
	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
)

// Echo context keys for session data.
const (
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
	ContextKeyFullName = "full_name"
	ContextKeyUser     = "user"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts and validates the session token from the cookie.
// If valid, it verifies the user still exists and adds the session to the
// context. If not authenticated, it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		cookie, err := c.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return errcodes.Unauthorized("Please log in")
		}

		claims, err := m.authService.ValidateToken(cookie.Value)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired session")
		}

		// Verify the user still exists; the role on the row wins over the
		// role baked into the token.
		user, err := m.authService.RetrieveUser(ctx, claims.Username)
		if err != nil {
			return errcodes.Unauthorized("User not found")
		}

		c.Set(ContextKeyUsername, user.Username)
		c.Set(ContextKeyRole, user.Role)
		c.Set(ContextKeyFullName, user.FullName)
		c.Set(ContextKeyUser, user)

		return next(c)
	}
}

// RequireRole returns middleware that checks the session role against the
// allowed roles. Must be used after Authenticate.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextKeyRole).(string)
			if !ok {
				return errcodes.Unauthorized("Please log in")
			}

			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}

			return errcodes.Forbidden("Accessing this page")
		}
	}
}

// UserFromContext retrieves the authenticated user from the Echo context.
func UserFromContext(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	return user, ok
}

// UsernameFromContext retrieves the session username from the Echo context.
func UsernameFromContext(c echo.Context) (string, bool) {
	username, ok := c.Get(ContextKeyUsername).(string)
	return username, ok
}
