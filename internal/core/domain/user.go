package domain

import "time"

// User models an authenticated actor in the system.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccessToken is the credential handed out by a successful login.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn time.Duration
}

const TokenTypeBearer = "bearer"
