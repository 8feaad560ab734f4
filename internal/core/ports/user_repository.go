package ports

import (
	"context"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

// UserRepository defines persistence for users. Lookups that find nothing return
// domain.ErrUserNotFound; a unique-index violation on Create returns a Conflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdateFlags sets is_active and is_admin and refreshes updated_at.
	UpdateFlags(ctx context.Context, id int64, isActive, isAdmin bool) (*domain.User, error)
}
