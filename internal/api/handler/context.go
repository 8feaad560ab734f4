package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/catalog-api/internal/api/middleware"
	"github.com/shopfront/catalog-api/internal/core/domain"
)

// ctxUser extracts the user injected by the Auth middleware. Its absence means
// the route was wired without Auth, which is reported as unauthenticated.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}

// pathID parses the positive integer path parameter name.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(name + " must be a positive integer")
	}
	return id, nil
}
