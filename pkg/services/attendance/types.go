package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/models"
)

// State is an employee's attendance state for one work date.
type State string

const (
	StateNotCheckedIn State = "NOT_CHECKED_IN"
	StateCheckedIn    State = "CHECKED_IN"
	StateCheckedOut   State = "CHECKED_OUT"
)

// Reason explains why a transition was refused.
type Reason string

const (
	ReasonOutsideGeofence   Reason = "OUTSIDE_GEOFENCE"
	ReasonAlreadyCheckedIn  Reason = "ALREADY_CHECKED_IN"
	ReasonAlreadyCheckedOut Reason = "ALREADY_CHECKED_OUT"
	ReasonNoActiveCheckIn   Reason = "NO_ACTIVE_CHECK_IN"
)

// TransitionKind identifies an accepted state change.
type TransitionKind string

const (
	KindCheckIn  TransitionKind = "check_in"
	KindCheckOut TransitionKind = "check_out"
)

var (
	// ErrStoreUnavailable marks a transient store failure or timeout. Callers may retry.
	ErrStoreUnavailable = errors.New("attendance store unavailable")

	// ErrMissingEmployee is returned when no employee identity was supplied.
	ErrMissingEmployee = errors.New("employee identity is required")

	// ErrInvalidDate is returned for a status date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
)

// Rejection is a business refusal of a check-in or check-out.
type Rejection struct {
	Reason         Reason
	DistanceMeters float64
	RequiredRadius float64
	Classification geofence.Classification
	ExistingTime   *time.Time
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonOutsideGeofence:
		return fmt.Sprintf("you must be within %gm of the office to check in (current distance %gm)", r.RequiredRadius, r.DistanceMeters)
	case ReasonAlreadyCheckedIn:
		return "already checked in today"
	case ReasonAlreadyCheckedOut:
		return "already checked out today"
	case ReasonNoActiveCheckIn:
		return "no active check-in found for today"
	default:
		return string(r.Reason)
	}
}

// CheckInRequest is a check-in attempt. EmployeeID always comes from the
// authenticated principal.
type CheckInRequest struct {
	Employee   models.EmployeeSummary
	Latitude   float64
	Longitude  float64
	Note       string
	DeviceInfo map[string]interface{}
}

// CheckOutRequest is a check-out attempt.
type CheckOutRequest struct {
	Employee  models.EmployeeSummary
	Latitude  float64
	Longitude float64
	Note      string
}

// Result is returned for an accepted transition.
type Result struct {
	Record       *models.AttendanceRecord
	Decision     geofence.Decision
	WorkDuration *time.Duration
}

// Status is the read-only view of one employee's work date.
type Status struct {
	State        State                    `json:"state"`
	WorkDate     string                   `json:"work_date"`
	Record       *models.AttendanceRecord `json:"record"`
	WorkDuration *time.Duration           `json:"-"`
}

// WorkDurationHours is the work duration in hours rounded to two decimals, nil before check-in.
func (s Status) WorkDurationHours() *float64 {
	return DurationHours(s.WorkDuration)
}

// Transition is published for every accepted check-in or check-out.
type Transition struct {
	Kind         TransitionKind
	Employee     models.EmployeeSummary
	Record       models.AttendanceRecord
	Decision     geofence.Decision
	At           time.Time
	WorkDuration *time.Duration
}

// TransitionSink receives accepted transitions. Implementations must not block.
type TransitionSink interface {
	OnAttendanceTransition(t Transition)
}

// DurationHours converts d to hours rounded to two decimals. nil stays nil.
func DurationHours(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	h := geofence.Round2(d.Hours())
	return &h
}
