// Package response renders JSON bodies for the account API.
// Success bodies are bare payloads. Client errors use Problem and server faults use ServerFault.
package response

import (
	"net/http"

	deliverycontext "restore/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// Problem is the body of every 4xx response.
type Problem struct {
	Title     string              `json:"title"`
	Status    int                 `json:"status"`
	Code      string              `json:"code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"` // Field-level messages, only for validation failures
	RequestID string              `json:"requestId"`
}

// ServerFault is the body of every 5xx response. Details is only filled in debug mode.
type ServerFault struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// Error returns a client error response
func Error(c echo.Context, statusCode int, errorCode, title string, fieldErrors map[string][]string) error {
	return c.JSON(statusCode, Problem{
		Title:     title,
		Status:    statusCode,
		Code:      errorCode,
		Errors:    fieldErrors,
		RequestID: deliverycontext.GetRequestID(c),
	})
}

// BadRequest returns a 400 error
func BadRequest(c echo.Context, errorCode, title string) error {
	return Error(c, http.StatusBadRequest, errorCode, title, nil)
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, message, details string) error {
	return c.JSON(http.StatusInternalServerError, ServerFault{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Details:    details,
	})
}
