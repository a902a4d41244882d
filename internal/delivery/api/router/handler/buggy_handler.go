package handler

import (
	"net/http"

	"restore/internal/delivery/api/response"
	deliverycontext "restore/internal/delivery/context"
	domainerrors "restore/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var errBuggyServerFault = domainerrors.NewBaseError(
	http.StatusInternalServerError,
	"SERVER_ERROR",
	"This is a server error",
	"",
)

// BuggyHandler serves one endpoint per error shape so clients can exercise their error handling.
type BuggyHandler struct{}

// NewBuggyHandler creates a new BuggyHandler instance
func NewBuggyHandler() *BuggyHandler {
	return &BuggyHandler{}
}

// NotFound always answers 404.
func (h *BuggyHandler) NotFound(c echo.Context) error {
	return domainerrors.ErrNotFound
}

// BadRequest always answers 400 with a title and no field errors.
func (h *BuggyHandler) BadRequest(c echo.Context) error {
	return response.BadRequest(c, "BAD_REQUEST", "This is a bad request")
}

// Unauthorised always answers 401.
func (h *BuggyHandler) Unauthorised(c echo.Context) error {
	return domainerrors.ErrUnauthorized
}

// ValidationError always answers 400 with two field errors.
func (h *BuggyHandler) ValidationError(c echo.Context) error {
	return domainerrors.NewValidationError().
		Add("Problem1", "This is the first error").
		Add("Problem2", "This is the second error")
}

// ServerError always fails with an unhandled fault.
func (h *BuggyHandler) ServerError(c echo.Context) error {
	return errors.WithStack(errBuggyServerFault)
}

// Admin is reachable only with the Admin role claim.
func (h *BuggyHandler) Admin(c echo.Context) error {
	identity, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"message":  "Only admins should be able to see this",
		"username": identity.UserName,
	})
}
