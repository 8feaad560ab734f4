package handler

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

// bindWindow reads skip and limit. An absent limit stays 0 so the service
// applies its default; an explicit limit must be at least 1.
func bindWindow(c echo.Context) (skip, limit int, err error) {
	err = echo.QueryParamsBinder(c).
		Int("skip", &skip).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return 0, 0, queryError(err)
	}
	if c.QueryParam("limit") != "" && limit < 1 {
		return 0, 0, domain.NewValidationError("limit must be greater than or equal to 1")
	}
	return skip, limit, nil
}

// bindProductFilter reads the listing filters and page window from the query string.
func bindProductFilter(c echo.Context) (ports.ProductFilter, error) {
	var (
		f                  ports.ProductFilter
		categoryID         int64
		minPrice, maxPrice float64
	)

	skip, limit, err := bindWindow(c)
	if err != nil {
		return f, err
	}
	f.Skip, f.Limit = skip, limit

	err = echo.QueryParamsBinder(c).
		Int64("category_id", &categoryID).
		Float64("min_price", &minPrice).
		Float64("max_price", &maxPrice).
		String("search", &f.Search).
		BindError()
	if err != nil {
		return f, queryError(err)
	}

	if c.QueryParam("category_id") != "" {
		f.CategoryID = &categoryID
	}
	if c.QueryParam("min_price") != "" {
		f.MinPrice = &minPrice
	}
	if c.QueryParam("max_price") != "" {
		f.MaxPrice = &maxPrice
	}
	if raw := c.QueryParam("in_stock"); raw != "" {
		v, ok := parseBool(raw)
		if !ok {
			return f, domain.NewValidationError("in_stock must be a boolean")
		}
		f.InStock = &v
	}
	return f, nil
}

// parseBool accepts the usual spellings of a boolean query flag.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, true
	case "0", "f", "false", "n", "no", "off":
		return false, true
	}
	return false, false
}

func queryError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return domain.NewValidationError(be.Field + " has an invalid value")
	}
	return err
}
