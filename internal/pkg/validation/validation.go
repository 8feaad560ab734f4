// Package validation wraps go-playground/validator with the error wording used
// across the API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Get returns the process-wide validator. validator.Validate caches struct
// metadata and is safe for concurrent use.
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(tagName)
	})
	return instance
}

// Struct validates s and returns a readable message joined from every failing field.
func Struct(s any) error {
	return Describe(Get().Struct(s))
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, v any, tag string) error {
	if err := Get().Var(v, tag); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return errors.New(message(field, ve[0]))
		}
		return err
	}
	return nil
}

// Describe converts validator errors into a single human-readable error.
// Nil stays nil; non-validation errors pass through.
func Describe(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, message(fe.Field(), fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// tagName reports a field under its wire name: the json, form or env tag, in
// that order, falling back to the Go field name.
func tagName(f reflect.StructField) string {
	for _, key := range []string{"json", "form", "env"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name = strings.TrimSpace(name); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
