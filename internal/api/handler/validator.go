package handler

import (
	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/pkg/validation"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface. Failures come back as
// domain validation errors so they render as 422.
func (ev *echoValidator) Validate(i any) error {
	if err := validation.Struct(i); err != nil {
		return domain.NewValidationError(err.Error())
	}
	return nil
}
