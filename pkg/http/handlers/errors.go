package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/jgirmay/geoattend/pkg/errors"
	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/http/response"
	"github.com/jgirmay/geoattend/pkg/services/attendance"
	"github.com/jgirmay/geoattend/pkg/services/presence"
	"github.com/jgirmay/geoattend/pkg/validation"
)

// retryAfterSeconds is advertised on transient store failures
const retryAfterSeconds = 5

const maxBodyBytes = 64 << 10

// toAppError maps domain errors to the API error shape. Unknown errors
// become a generic 500 so internals never leak to clients.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var rej *attendance.Rejection
	if errors.As(err, &rej) {
		return rejectionError(rej)
	}

	switch {
	case errors.Is(err, geofence.ErrInvalidCoordinates):
		return apperrors.InvalidCoordinates("latitude must be within [-90, 90] and longitude within [-180, 180]")
	case errors.Is(err, attendance.ErrInvalidDate):
		return apperrors.Validation(attendance.ErrInvalidDate.Error()).WithDetail("field", "date")
	case errors.Is(err, attendance.ErrMissingEmployee):
		return apperrors.Unauthorized("authentication required")
	case errors.Is(err, presence.ErrForbidden):
		return apperrors.Forbidden("observer capability required")
	case errors.Is(err, attendance.ErrStoreUnavailable):
		return apperrors.Unavailable("attendance service is temporarily unavailable, please retry", retryAfterSeconds)
	default:
		return apperrors.Internal()
	}
}

func rejectionError(rej *attendance.Rejection) *apperrors.AppError {
	if rej.Reason == attendance.ReasonOutsideGeofence {
		return apperrors.Unprocessable(string(rej.Reason), rej.Error()).
			WithDetail("distance", rej.DistanceMeters).
			WithDetail("required_radius", rej.RequiredRadius).
			WithDetail("classification", rej.Classification)
	}

	appErr := apperrors.Conflict(string(rej.Reason), rej.Error())
	if rej.ExistingTime != nil {
		appErr.WithDetail("existing_time", rej.ExistingTime)
	}
	return appErr
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) *apperrors.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("request body is empty")
		}
		return apperrors.Validation("request body is not valid JSON")
	}

	if fieldErrs := validation.Validate(dst); len(fieldErrs) > 0 {
		appErr := apperrors.Validation("request validation failed").WithDetail("fields", fieldErrs)
		for _, fe := range fieldErrs {
			if fe.Field == "latitude" || fe.Field == "longitude" {
				appErr.Code = apperrors.CodeInvalidCoordinates
				break
			}
		}
		return appErr
	}
	return nil
}

func writeError(w http.ResponseWriter, err *apperrors.AppError) {
	response.Error(w, err)
}
