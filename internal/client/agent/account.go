package agent

import (
	"context"
)

// User is what login and current-user return, and what the client persists.
type User struct {
	Email    string `json:"email"`
	UserName string `json:"username"`
	Token    string `json:"token"`
}

type LoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountAPI groups the account endpoints.
type AccountAPI struct {
	client *Client
}

func (a *AccountAPI) Login(ctx context.Context, req LoginRequest) (*User, error) {
	var user User
	if err := a.client.Post(ctx, "account/login", req, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Register creates an account. It does not sign the user in.
func (a *AccountAPI) Register(ctx context.Context, req RegisterRequest) error {
	return a.client.Post(ctx, "account/register", req, nil)
}

// CurrentUser revalidates the bearer token and returns the user with a fresh token.
func (a *AccountAPI) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := a.client.Get(ctx, "account/currentUser", &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// TestErrorsAPI calls the endpoints that answer with each error shape.
type TestErrorsAPI struct {
	client *Client
}

func (t *TestErrorsAPI) Get400Error(ctx context.Context) error {
	return t.client.Get(ctx, "buggy/bad-request", nil)
}

func (t *TestErrorsAPI) Get401Error(ctx context.Context) error {
	return t.client.Get(ctx, "buggy/unauthorised", nil)
}

func (t *TestErrorsAPI) Get404Error(ctx context.Context) error {
	return t.client.Get(ctx, "buggy/not-found", nil)
}

func (t *TestErrorsAPI) Get500Error(ctx context.Context) error {
	return t.client.Get(ctx, "buggy/server-error", nil)
}

func (t *TestErrorsAPI) GetValidationError(ctx context.Context) error {
	return t.client.Get(ctx, "buggy/validation-error", nil)
}

// GetAdmin succeeds only for tokens carrying the Admin role.
func (t *TestErrorsAPI) GetAdmin(ctx context.Context) error {
	return t.client.Get(ctx, "buggy/admin", nil)
}
