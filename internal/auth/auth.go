// Package auth holds the credential capabilities the services depend on:
// password hashing and bearer token issue/validation.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Principal is the authenticated caller attached to a request
type Principal struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	TokenID   string          `json:"-"`
	ExpiresAt time.Time       `json:"-"`
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type TokenIssuer interface {
	IssueToken(p Principal) (token string, expiresAt time.Time, err error)
}

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Principal, error)
}
