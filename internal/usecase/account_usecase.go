// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"restore/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	UserName string
	Email    string
	Password string
}

// LoginInput defines the credentials presented at login.
type LoginInput struct {
	UserName string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account.
type RegisterOutput struct {
	User *entity.User
}

// SessionOutput carries a freshly issued session token and the user it was issued for.
type SessionOutput struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// AccountUsecase defines the account operations exposed to the delivery layer.
type AccountUsecase interface {
	// Register creates an account with the Member role. It does not sign the user in.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies the credentials and issues a session token.
	Login(ctx context.Context, input *LoginInput) (*SessionOutput, error)

	// CurrentUser reloads the authenticated user and issues a fresh token.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*SessionOutput, error)
}
