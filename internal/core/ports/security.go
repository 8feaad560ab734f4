package ports

import "time"

// PasswordHasher is a one-way, salted password transform.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify never fails loudly: malformed hashes simply do not match.
	Verify(password, hashed string) bool
}

// TokenIssuer issues and verifies signed, time-limited bearer tokens.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	// Verify returns the token subject or domain.ErrInvalidToken.
	Verify(token string) (string, error)
}
