package validator

import (
	"testing"

	domainerrors "restore/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UserName string `validate:"required,max=8"`
	Email    string `validate:"required,email"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&sample{UserName: "alice", Email: "alice@test.com"}))

	err := v.Validate(&sample{Email: "not-an-email"})

	var verr *domainerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.FieldErrors()
	assert.Equal(t, []string{"The UserName field is required."}, fields["UserName"])
	assert.Equal(t, []string{"The Email field is not a valid e-mail address."}, fields["Email"])

	err = v.Validate(&sample{UserName: "muchtoolongname", Email: "a@b.co"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"The field UserName must be a string with a maximum length of 8."}, verr.FieldErrors()["UserName"])
}

func TestCustomValidator_NonStruct(t *testing.T) {
	err := New().Validate("plain string")

	assert.Error(t, err)

	var verr *domainerrors.ValidationError
	assert.False(t, errors.As(err, &verr))
}
