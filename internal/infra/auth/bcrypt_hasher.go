// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"restore/config"
	"restore/internal/domain/service"
)

// bcrypt ignores input beyond 72 bytes.
const bcryptMaxPasswordBytes = 72

// defaultPolicy mirrors the usual identity defaults: six characters with
// upper, lower, digit and non-alphanumeric classes present.
var defaultPolicy = config.PasswordStrengthConfig{
	MinLength:        6,
	MaxLength:        bcryptMaxPasswordBytes,
	RequireUppercase: true,
	RequireLowercase: true,
	RequireNumbers:   true,
	RequireSpecial:   true,
}

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher used by Fx.
// Cost and policy come from config, falling back to defaults.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		cost = cfg.Auth.BcryptCost
	}

	policy := defaultPolicy
	if cfg != nil && cfg.PasswordStrength != nil {
		policy = *cfg.PasswordStrength
	}

	return newBcryptHasher(cost, policy)
}

// NewBcryptHasherWithCost returns a hasher with the default policy and the given cost.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return newBcryptHasher(cost, defaultPolicy)
}

func newBcryptHasher(cost int, policy config.PasswordStrengthConfig) *bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if policy.MaxLength <= 0 || policy.MaxLength > bcryptMaxPasswordBytes {
		policy.MaxLength = bcryptMaxPasswordBytes
	}

	return &bcryptHasher{cost: cost, policy: policy}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// ValidatePasswordStrength reports every unmet rule so the form can show them together.
func (h *bcryptHasher) ValidatePasswordStrength(password string) []string {
	var problems []string

	if len(password) < h.policy.MinLength {
		problems = append(problems, fmt.Sprintf("Passwords must be at least %d characters.", h.policy.MinLength))
	}
	if len(password) > h.policy.MaxLength {
		problems = append(problems, fmt.Sprintf("Passwords must be at most %d bytes.", h.policy.MaxLength))
	}
	if h.policy.RequireSpecial && !h.hasSpecialChars(password) {
		problems = append(problems, "Passwords must have at least one non alphanumeric character.")
	}
	if h.policy.RequireNumbers && !h.hasNumbers(password) {
		problems = append(problems, "Passwords must have at least one digit ('0'-'9').")
	}
	if h.policy.RequireLowercase && !h.hasLowercase(password) {
		problems = append(problems, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if h.policy.RequireUppercase && !h.hasUppercase(password) {
		problems = append(problems, "Passwords must have at least one uppercase ('A'-'Z').")
	}

	return problems
}

func (h *bcryptHasher) hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}

	return false
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}

	return false
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}

	return false
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}

	return false
}
