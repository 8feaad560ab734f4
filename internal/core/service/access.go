package service

import (
	"context"
	"errors"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

// AccessService resolves bearer tokens to the users they were issued for.
type AccessService struct {
	tokens ports.TokenIssuer
	users  ports.UserRepository
}

func NewAccessService(tokens ports.TokenIssuer, users ports.UserRepository) *AccessService {
	return &AccessService{tokens: tokens, users: users}
}

// CurrentUser verifies token and loads its subject. An invalid token and a
// subject with no stored user both yield domain.ErrInvalidToken.
func (s *AccessService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// RequireActive fails with an Unauthorized error for missing or inactive users.
func RequireActive(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

// RequireAdmin fails with a Forbidden error unless user is an administrator.
// A nil user has no established identity and is Unauthorized instead.
func RequireAdmin(user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidToken
	}
	if !user.IsAdmin {
		return domain.ErrNotEnoughPrivilege
	}
	return nil
}
