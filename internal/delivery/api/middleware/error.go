package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"restore/config"
	"restore/internal/delivery/api/response"
	deliverycontext "restore/internal/delivery/context"
	domainerrors "restore/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
	debug  bool
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger, cfg *config.Config) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
		debug:  cfg.Env.Debug,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler.
// 4xx errors render as response.Problem; everything else renders as response.ServerFault.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.serverFault(c, err, appErr.Message())

			return
		}

		var fields map[string][]string
		var carrier domainerrors.FieldErrorCarrier
		if errors.As(err, &carrier) {
			fields = carrier.FieldErrors()
		}

		_ = response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), fields)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)

		return
	}

	m.serverFault(c, err, domainerrors.ErrInternalError.Message())
}

// serverFault logs the error with its stack and renders the opaque 500 body.
func (m *ErrorMiddleware) serverFault(c echo.Context, err error, message string) {
	deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	details := ""
	if m.debug {
		details = fmt.Sprintf("%+v", err)
	}

	_ = response.InternalServerError(c, message, details)
}
