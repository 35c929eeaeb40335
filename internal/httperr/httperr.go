package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"userdir-service/pkg/logger"
)

// Error is a domain error carrying the HTTP status it should be reported
// with. Handlers raise these and the terminal Handler renders the envelope.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with the given status and message
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Conflict reports a duplicate resource, mapped to 400 to preserve the
// existing API contract ("Email already exists.").
func Conflict(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// NotFound reports a missing resource
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// InvalidCredentials reports a failed login
func InvalidCredentials(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthenticated reports a missing session
func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden reports an invalid or insufficient session
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// Handler is the terminal Echo error handler. Every controller error ends
// up here and is rendered with the uniform envelope
// {"success": false, "status": N, "message": "..."}.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Something went wrong!"

	var domainErr *Error
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &domainErr):
		status = domainErr.Status
		message = domainErr.Message
	case errors.As(err, &echoErr):
		// Router-level errors (unknown route, bad method) keep their status
		status = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		}
	default:
		logger.FromContext(c).Error("Unexpected error", zap.Error(err))
	}

	if writeErr := c.JSON(status, echo.Map{
		"success": false,
		"status":  status,
		"message": message,
	}); writeErr != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(writeErr))
	}
}
