package context

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// KeyIdentity is the key for storing the authenticated identity.
const KeyIdentity ContextKey = "identity"

// Identity is the caller decoded from a validated session token.
type Identity struct {
	UserID   uuid.UUID
	UserName string
	Email    string
	Roles    []string
}

// HasRole reports whether the token carried the role claim.
func (i *Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// SetIdentity stores the identity in echo.Context and in the request's context.Context.
func SetIdentity(c echo.Context, identity *Identity) {
	c.Set(string(KeyIdentity), identity)
	c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), identity)))
}

// GetIdentity extracts the identity set by the auth middleware.
func GetIdentity(c echo.Context) (*Identity, bool) {
	identity, ok := c.Get(string(KeyIdentity)).(*Identity)

	return identity, ok && identity != nil
}

// WithIdentity returns a new context carrying the identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, KeyIdentity, identity)
}

// IdentityFromContext extracts the identity from standard context.Context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(KeyIdentity).(*Identity)

	return identity, ok && identity != nil
}
