// Package handler contains the HTTP handlers for the account API.
package handler

import (
	"log/slog"
	"net/http"

	"restore/internal/delivery/api/response"
	deliverycontext "restore/internal/delivery/context"
	domainerrors "restore/internal/domain/errors"
	"restore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LoginRequest is the body of POST /api/account/login.
type LoginRequest struct {
	UserName string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /api/account/register.
type RegisterRequest struct {
	UserName string `json:"username" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is returned by login and current-user.
type UserResponse struct {
	Token    string `json:"token"`
	UserName string `json:"username"`
	Email    string `json:"email"`
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

// Login handles the login request.
func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.Wrap(domainerrors.ErrBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(output))
}

// Register handles the registration request. The new account is not signed in.
func (h *AccountHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errors.Wrap(domainerrors.ErrBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusCreated)
}

// CurrentUser returns the authenticated user with a freshly issued token.
func (h *AccountHandler) CurrentUser(c echo.Context) error {
	identity, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return domainerrors.ErrUnauthorized.WrapMessage("no identity on request")
	}

	output, err := h.uc.CurrentUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(output))
}

func toUserResponse(output *usecase.SessionOutput) UserResponse {
	return UserResponse{
		Token:    output.Token,
		UserName: output.User.UserName,
		Email:    output.User.Email,
	}
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
