package errors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_WrapMessageKeepsIdentity(t *testing.T) {
	err := ErrInvalidCredentials.WrapMessage("login failed")

	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	var appErr AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPCode())
	assert.Equal(t, "invalid credentials", appErr.Message())
}

func TestValidationError_CollectsFieldMessages(t *testing.T) {
	verr := NewValidationError()
	assert.True(t, verr.Empty())

	verr.Add("Password", "too short").Add("Password", "needs a digit").Add("Email", "taken")

	assert.False(t, verr.Empty())
	assert.Equal(t, http.StatusBadRequest, verr.HTTPCode())

	fields := verr.FieldErrors()
	assert.Equal(t, []string{"too short", "needs a digit"}, fields["Password"])
	assert.Equal(t, []string{"taken"}, fields["Email"])

	fields["Email"][0] = "mutated"
	assert.Equal(t, []string{"taken"}, verr.FieldErrors()["Email"])
}

func TestDatabaseExecuteError_Unwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseExecuteError(cause, "failed to create user")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode())
	assert.Equal(t, "failed to create user", err.Details())
}
