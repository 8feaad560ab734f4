package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

// UserKey is the echo context key holding the authenticated *domain.User.
const UserKey = "user"

// Auth resolves the bearer token to a stored user and injects it into the
// context under UserKey.
func Auth(access ports.AccessControl) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrNotAuthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrNotAuthenticated
			}

			user, err := access.CurrentUser(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user injected by Auth, or nil.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(UserKey).(*domain.User)
	return user
}
