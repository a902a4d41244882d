// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"restore/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUserName retrieves a user by the normalized form of their user name.
	// Lookups are served by the primary so a fresh registration is visible at once.
	FindByUserName(ctx context.Context, userName string) (*entity.User, error)

	// ExistsByEmail reports whether any account already uses the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// AddToRole grants a role to an existing user.
	AddToRole(ctx context.Context, userID uuid.UUID, role entity.Role) error
}
