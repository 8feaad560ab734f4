package domain

import "errors"

// Error kinds. Every error returned by the core wraps exactly one of these so the
// transport layer can map it to a status code with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// Error is a domain failure carrying its kind and a client-safe detail message.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.Kind }

// NewValidationError builds a validation failure with the given detail.
func NewValidationError(detail string) *Error {
	return &Error{Kind: ErrValidation, Detail: detail}
}

var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthorized, Detail: "incorrect email or password"}
	ErrInvalidToken       = &Error{Kind: ErrUnauthorized, Detail: "could not validate credentials"}
	ErrNotAuthenticated   = &Error{Kind: ErrUnauthorized, Detail: "not authenticated"}
	ErrInactiveUser       = &Error{Kind: ErrUnauthorized, Detail: "inactive user"}
	ErrNotEnoughPrivilege = &Error{Kind: ErrForbidden, Detail: "not enough privileges"}

	ErrUserNotFound       = &Error{Kind: ErrNotFound, Detail: "user not found"}
	ErrEmailRegistered    = &Error{Kind: ErrConflict, Detail: "email already registered"}
	ErrUsernameTaken      = &Error{Kind: ErrConflict, Detail: "username already taken"}
	ErrUserExists         = &Error{Kind: ErrConflict, Detail: "user already exists"}
	ErrCategoryNotFound   = &Error{Kind: ErrNotFound, Detail: "category not found"}
	ErrCategoryExists     = &Error{Kind: ErrConflict, Detail: "category already exists"}
	ErrCategoryInUse      = &Error{Kind: ErrConflict, Detail: "category has products"}
	ErrProductNotFound    = &Error{Kind: ErrNotFound, Detail: "product not found"}
	ErrSKUExists          = &Error{Kind: ErrConflict, Detail: "stockKeepingUnit already exists"}
)

// KindName returns the short, stable name of err's kind, or "internal".
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
