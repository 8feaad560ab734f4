package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
	"github.com/shopfront/catalog-api/internal/pkg/metrics"
	"github.com/shopfront/catalog-api/internal/pkg/validation"
)

const (
	defaultTokenTTL = 30 * time.Minute
	// bcrypt only accepts passwords up to this many bytes.
	maxPasswordBytes = 72
)

// AuthService implements registration, authentication and login.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	tokenTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		log:      log,
		now:      time.Now,
	}
}

// Register creates an active, non-admin user. The email check runs before the
// username check so the reported conflict is deterministic.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if err := validateRegistration(email, username, password); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:          email,
		Username:       username,
		HashedPassword: hash,
		IsActive:       true,
		IsAdmin:        false,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()
	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Authenticate resolves email and password to a user. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token whose subject is the email.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AccessToken, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	token, err := s.tokens.Issue(user.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	return &domain.AccessToken{
		Token:     token,
		TokenType: domain.TokenTypeBearer,
		ExpiresIn: s.tokenTTL,
	}, nil
}

// EnsureAdmin makes sure an active administrator with this email exists,
// registering it first when missing.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		user, err = s.Register(ctx, email, username, password)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if user.IsAdmin && user.IsActive {
		return user, nil
	}
	promoted, err := s.SetFlags(ctx, user.ID, true, true)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", promoted.ID).Str("email", promoted.Email).Msg("administrator ensured")
	return promoted, nil
}

// SetFlags changes a user's active and admin flags.
func (s *AuthService) SetFlags(ctx context.Context, userID int64, isActive, isAdmin bool) (*domain.User, error) {
	return s.repo.UpdateFlags(ctx, userID, isActive, isAdmin)
}

func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrEmailRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func validateRegistration(email, username, password string) error {
	if err := validation.Var("email", email, "required,email"); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if err := validation.Var("username", username, "required,min=3,max=50"); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if err := validation.Var("password", password, "required,min=8"); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if len(password) > maxPasswordBytes {
		return domain.NewValidationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
