package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/jgirmay/geoattend/pkg/errors"
	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/http/dto"
	"github.com/jgirmay/geoattend/pkg/http/middleware"
	"github.com/jgirmay/geoattend/pkg/http/response"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/services/attendance"
)

// AttendanceHandlers handles attendance API requests
type AttendanceHandlers struct {
	ledger    *attendance.Ledger
	evaluator *geofence.Evaluator
	location  *time.Location
	logger    *logging.Logger
}

// NewAttendanceHandlers creates new attendance handlers
func NewAttendanceHandlers(ledger *attendance.Ledger, evaluator *geofence.Evaluator, location *time.Location, logger *logging.Logger) *AttendanceHandlers {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AttendanceHandlers{
		ledger:    ledger,
		evaluator: evaluator,
		location:  location,
		logger:    logger,
	}
}

// CheckIn handles POST /api/attendance/checkin
func (h *AttendanceHandlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req dto.CheckInRequest
	if appErr := decodeAndValidate(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	result, err := h.ledger.CheckIn(r.Context(), attendance.CheckInRequest{
		Employee:   principal.Employee,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Note:       req.Notes,
		DeviceInfo: req.DeviceInfo,
	})
	if err != nil {
		h.fail(w, r, "check-in", err)
		return
	}

	response.OK(w, "Checked in successfully", dto.AttendanceResponse{
		Record:         result.Record,
		Distance:       result.Decision.DistanceMeters,
		Classification: result.Decision.Classification,
	})
}

// CheckOut handles POST /api/attendance/checkout
func (h *AttendanceHandlers) CheckOut(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req dto.CheckOutRequest
	if appErr := decodeAndValidate(w, r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	result, err := h.ledger.CheckOut(r.Context(), attendance.CheckOutRequest{
		Employee:  principal.Employee,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Note:      req.Notes,
	})
	if err != nil {
		h.fail(w, r, "check-out", err)
		return
	}

	response.OK(w, "Checked out successfully", dto.AttendanceResponse{
		Record:            result.Record,
		Distance:          result.Decision.DistanceMeters,
		Classification:    result.Decision.Classification,
		WorkDurationHours: attendance.DurationHours(result.WorkDuration),
	})
}

// GetStatus handles GET /api/attendance/status
func (h *AttendanceHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	status, err := h.ledger.Status(r.Context(), principal.Employee.ID, r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, "status", err)
		return
	}

	response.OK(w, "", dto.StatusResponse{
		State:             string(status.State),
		WorkDate:          status.WorkDate,
		IsCheckedIn:       status.State != attendance.StateNotCheckedIn,
		IsCheckedOut:      status.State == attendance.StateCheckedOut,
		Record:            status.Record,
		WorkDurationHours: status.WorkDurationHours(),
	})
}

// GetLocationStatus handles GET /api/attendance/location-status
// Accepts latitude/longitude or lat/lon query parameters.
func (h *AttendanceHandlers) GetLocationStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := parseCoordinate(q.Get("latitude"), q.Get("lat"))
	lon, lonErr := parseCoordinate(q.Get("longitude"), q.Get("lon"))
	if latErr != nil || lonErr != nil {
		writeError(w, apperrors.InvalidCoordinates("latitude and longitude query parameters are required numbers"))
		return
	}

	advice, err := h.evaluator.Advise(lat, lon)
	if err != nil {
		writeError(w, toAppError(err))
		return
	}

	resp := dto.LocationStatusResponse{
		Advice:         advice,
		Classification: advice.Classification,
		Latitude:       lat,
		Longitude:      lon,
	}
	if advice.Classification != geofence.Inside {
		if arrival, err := h.evaluator.Arrival(lat, lon); err == nil {
			resp.Arrival = &arrival
		}
	}

	response.OK(w, advice.Message, resp)
}

// GetOffice handles GET /api/attendance/office
func (h *AttendanceHandlers) GetOffice(w http.ResponseWriter, r *http.Request) {
	cfg := h.evaluator.Config()
	now := time.Now().In(h.location)

	response.OK(w, "", dto.OfficeResponse{
		Latitude:     cfg.Center.Latitude,
		Longitude:    cfg.Center.Longitude,
		Radius:       cfg.RadiusMeters,
		BufferRadius: cfg.BufferMeters,
		Address:      cfg.Address,
		Timezone:     h.location.String(),
		LocalTime:    now.Format(time.RFC3339),
		WorkDate:     h.ledger.Today(),
	})
}

func (h *AttendanceHandlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("attendance request failed",
			zap.String("operation", op),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, appErr)
}

var errMissingCoordinate = errors.New("missing coordinate")

func parseCoordinate(values ...string) (float64, error) {
	for _, v := range values {
		if v == "" {
			continue
		}
		return strconv.ParseFloat(v, 64)
	}
	return 0, errMissingCoordinate
}
