// Package validator adapts go-playground/validator to echo and to the domain's field errors.
package validator

import (
	"fmt"

	domainerrors "restore/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// New creates a validator with required-struct semantics enabled.
func New() *CustomValidator {
	return &CustomValidator{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks the struct tags of i. Tag failures become a *domainerrors.ValidationError
// keyed by struct field name.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}

	verr := domainerrors.NewValidationError()
	for _, fe := range fieldErrs {
		verr.Add(fe.StructField(), message(fe))
	}

	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.StructField())
	case "email":
		return fmt.Sprintf("The %s field is not a valid e-mail address.", fe.StructField())
	case "max":
		return fmt.Sprintf("The field %s must be a string with a maximum length of %s.", fe.StructField(), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.StructField())
	}
}
