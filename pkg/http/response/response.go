// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/jgirmay/geoattend/pkg/errors"
)

// Envelope is the body of every API response
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Error   *apperrors.AppError `json:"error,omitempty"`
}

// JSON writes data with the given status code
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes a successful envelope
func OK(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failed envelope using the status carried by err
func Error(w http.ResponseWriter, err *apperrors.AppError) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if err.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(err.RetryAfter))
	}
	JSON(w, status, Envelope{Success: false, Message: err.Message, Error: err})
}
