// Package errors defines the API error shape returned to clients.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is an error with a stable code and an HTTP status.
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Status     int                    `json:"-"`
	RetryAfter int                    `json:"-"` // seconds, only for transient failures
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetail attaches a structured detail and returns the same error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common error codes
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeUnprocessable      = "UNPROCESSABLE_ENTITY"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

func InvalidCoordinates(message string) *AppError {
	return &AppError{Code: CodeInvalidCoordinates, Message: message, Status: http.StatusBadRequest}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

// Conflict uses code as the error code so callers can distinguish which
// state transition was refused.
func Conflict(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusConflict}
}

func Unprocessable(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusUnprocessableEntity}
}

func Unavailable(message string, retryAfterSeconds int) *AppError {
	return &AppError{Code: CodeUnavailable, Message: message, Status: http.StatusServiceUnavailable, RetryAfter: retryAfterSeconds}
}

func Internal() *AppError {
	return &AppError{Code: CodeInternalError, Message: "internal server error", Status: http.StatusInternalServerError}
}
