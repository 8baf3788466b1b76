package presence

import (
	"time"

	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/models"
)

// Outbound event names.
const (
	EventConnectionSuccess      = "connection_success"
	EventUserStatus             = "user_status"
	EventStaffLocationUpdate    = "staff_location_update"
	EventLocationUpdateAck      = "location_update_ack"
	EventAttendanceEvent        = "attendance_event"
	EventAttendanceNotification = "attendance_notification"
	EventAttendanceUpdate       = "attendance_update"
	EventOnlineUsers            = "online_users"
	EventNotification           = "notification"
	EventAnnouncement           = "announcement"
	EventSystemAlert            = "system_alert"
	EventPong                   = "pong"
	EventError                  = "error"
)

// user_status values
const (
	StatusOnline  = "user_online"
	StatusOffline = "user_offline"
)

// Message is the envelope written to every socket.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// OnlineEmployee is one entry of the online snapshot.
type OnlineEmployee struct {
	models.EmployeeSummary
	Observer    bool      `json:"observer"`
	ConnectedAt time.Time `json:"connected_at"`
}

// UserStatus announces a session joining or leaving.
type UserStatus struct {
	Status   string                 `json:"status"`
	Employee models.EmployeeSummary `json:"employee"`
	Reason   string                 `json:"reason,omitempty"`
	At       time.Time              `json:"at"`
}

// PositionUpdate is a live position reported by an employee's client.
type PositionUpdate struct {
	Latitude   float64            `json:"latitude"`
	Longitude  float64            `json:"longitude"`
	Accuracy   *float64           `json:"accuracy,omitempty"`
	ReportedAt *time.Time         `json:"reported_at,omitempty"`
	Geofence   *geofence.Decision `json:"geofence,omitempty"`
}

// StaffLocation is what observers receive for a PositionUpdate.
type StaffLocation struct {
	Employee models.EmployeeSummary `json:"employee"`
	PositionUpdate
	ReceivedAt time.Time `json:"received_at"`
}

// ClientAttendanceEvent is an informational attendance event sent by a client
// (for example "approaching office"). It never changes ledger state.
type ClientAttendanceEvent struct {
	Event    string                 `json:"event"`
	Location *geofence.Point        `json:"location,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// ForwardedAttendanceEvent is a ClientAttendanceEvent as seen by observers.
type ForwardedAttendanceEvent struct {
	Employee models.EmployeeSummary `json:"employee"`
	ClientAttendanceEvent
	ReceivedAt time.Time `json:"received_at"`
}

// AttendanceNotification is sent to the employee whose attendance changed.
type AttendanceNotification struct {
	Kind              string                  `json:"kind"`
	Message           string                  `json:"message"`
	WorkDate          string                  `json:"work_date,omitempty"`
	Time              time.Time               `json:"time"`
	DistanceMeters    float64                 `json:"distance"`
	Classification    geofence.Classification `json:"classification,omitempty"`
	WorkDurationHours *float64                `json:"work_duration_hours,omitempty"`
}

// AttendanceUpdate is sent to observers for every accepted transition.
type AttendanceUpdate struct {
	Kind              string                  `json:"kind"`
	Employee          models.EmployeeSummary  `json:"employee"`
	Record            models.AttendanceRecord `json:"record"`
	DistanceMeters    float64                 `json:"distance"`
	Classification    geofence.Classification `json:"classification"`
	At                time.Time               `json:"at"`
	WorkDurationHours *float64                `json:"work_duration_hours,omitempty"`
}

// Announcement is broadcast to every connected session.
type Announcement struct {
	Message  string                 `json:"message"`
	Title    string                 `json:"title,omitempty"`
	Priority string                 `json:"priority,omitempty"`
	From     models.EmployeeSummary `json:"from"`
}

// Notification is a direct message from an observer to one employee.
type Notification struct {
	Title   string                 `json:"title,omitempty"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
	From    models.EmployeeSummary `json:"from"`
}

// SystemAlert is an operational alert for everyone.
type SystemAlert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ErrorPayload answers a rejected inbound event.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}
