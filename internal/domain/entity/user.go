// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the account entity. It doubles as the stored credential:
// the login identifier is UserName and the secret is kept only as PasswordHash.
type User struct {
	ID                 uuid.UUID // The Global Unique Identifier (GUID) for the user.
	UserName           string    // Login identifier as typed at registration.
	NormalizedUserName string    // Upper-cased UserName used for case-insensitive lookups.
	Email              string    // Contact email, unique per account.
	NormalizedEmail    string    // Upper-cased Email used for uniqueness checks.
	PasswordHash       string    // bcrypt hash of the password, never the plaintext.
	Roles              Roles     // Roles granted to the account.
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewUser builds a user with its normalized fields populated.
func NewUser(userName, email string) *User {
	return &User{
		UserName:           strings.TrimSpace(userName),
		NormalizedUserName: NormalizeName(userName),
		Email:              strings.TrimSpace(email),
		NormalizedEmail:    NormalizeName(email),
	}
}

// NormalizeName returns the canonical form used to compare identifiers
// without regard to case or surrounding whitespace.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// HasRole reports whether the user was granted the role.
func (u *User) HasRole(role Role) bool {
	return u.Roles.Contains(role)
}
