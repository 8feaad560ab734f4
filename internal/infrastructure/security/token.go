package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

// JWTIssuer signs and verifies HMAC JWTs carrying the subject in "sub".
type JWTIssuer struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewJWTIssuer builds an issuer for the named HMAC algorithm (HS256, HS384, HS512).
func NewJWTIssuer(secret, algorithm string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty secret")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwt: unsupported algorithm %q", algorithm)
	}
	return &JWTIssuer{secret: []byte(secret), method: method, now: time.Now}, nil
}

// Issue returns a token for subject that expires ttl from now.
func (j *JWTIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	now := j.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(j.method, claims).SignedString(j.secret)
}

// Verify checks signature, algorithm and expiry. Every failure collapses into
// domain.ErrInvalidToken.
func (j *JWTIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
