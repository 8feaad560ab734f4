package ports

import (
	"context"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

// AuthService is the user directory: registration, credential checks and login.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.AccessToken, error)
	EnsureAdmin(ctx context.Context, email, username, password string) (*domain.User, error)
	SetFlags(ctx context.Context, userID int64, isActive, isAdmin bool) (*domain.User, error)
}

// AccessControl resolves bearer tokens to stored users.
type AccessControl interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}
