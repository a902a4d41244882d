package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by a session token.
type Claims struct {
	UserID   uuid.UUID `json:"-"`
	UserName string    `json:"name"`
	Email    string    `json:"email"`
	Roles    []string  `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenSubject is the identity a session token is issued for.
type TokenSubject struct {
	UserID   uuid.UUID
	UserName string
	Email    string
	Roles    []string
}

// TokenService issues and validates stateless session tokens.
type TokenService interface {
	// IssueToken signs a token for the subject and returns it with its expiry.
	IssueToken(subject TokenSubject) (token string, expiresAt time.Time, err error)

	// ValidateToken verifies signature and expiry and returns the decoded claims.
	// It never extends the token's lifetime.
	ValidateToken(tokenString string) (*Claims, error)

	// TokenTTL returns the fixed lifetime of issued tokens.
	TokenTTL() time.Duration
}
