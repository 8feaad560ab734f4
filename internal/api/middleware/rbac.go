package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/shopfront/catalog-api/internal/core/service"
)

// RequireActive rejects requests whose authenticated user is missing or
// deactivated. It must run after Auth.
func RequireActive() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := service.RequireActive(CurrentUser(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose user is not an administrator, before the
// handler reads the path or body. It must run after RequireActive.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := service.RequireAdmin(CurrentUser(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
