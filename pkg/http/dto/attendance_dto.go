package dto

import (
	"time"

	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/models"
)

// CheckInRequest is the body of POST /api/attendance/checkin.
// Any staff_id sent by the client is ignored; identity comes from the token.
type CheckInRequest struct {
	Latitude   *float64               `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64               `json:"longitude" validate:"required,gte=-180,lte=180"`
	Notes      string                 `json:"notes,omitempty" validate:"max=500"`
	DeviceInfo map[string]interface{} `json:"device_info,omitempty"`
}

// CheckOutRequest is the body of POST /api/attendance/checkout
type CheckOutRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Notes     string   `json:"notes,omitempty" validate:"max=500"`
}

// AnnouncementRequest is the body of POST /api/presence/announcements
type AnnouncementRequest struct {
	Message  string `json:"message" validate:"required,max=2000"`
	Title    string `json:"title,omitempty" validate:"max=200"`
	Priority string `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
}

// SystemAlertRequest is the body of POST /api/presence/alerts
type SystemAlertRequest struct {
	Severity string `json:"severity" validate:"required,oneof=info warning critical"`
	Message  string `json:"message" validate:"required,max=2000"`
}

// NotificationRequest is the body of POST /api/presence/notifications
type NotificationRequest struct {
	EmployeeID string                 `json:"staff_id" validate:"required"`
	Title      string                 `json:"title,omitempty" validate:"max=200"`
	Message    string                 `json:"message" validate:"required,max=2000"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// AttendanceResponse is returned by check-in and check-out
type AttendanceResponse struct {
	Record            *models.AttendanceRecord `json:"record"`
	Distance          float64                  `json:"distance"`
	Classification    geofence.Classification  `json:"classification"`
	WorkDurationHours *float64                 `json:"work_duration_hours,omitempty"`
}

// StatusResponse is returned by GET /api/attendance/status
type StatusResponse struct {
	State             string                   `json:"state"`
	WorkDate          string                   `json:"work_date"`
	IsCheckedIn       bool                     `json:"is_checked_in"`
	IsCheckedOut      bool                     `json:"is_checked_out"`
	Record            *models.AttendanceRecord `json:"record"`
	WorkDurationHours *float64                 `json:"work_duration_hours"`
}

// LocationStatusResponse is returned by GET /api/attendance/location-status
type LocationStatusResponse struct {
	geofence.Advice
	Classification geofence.Classification `json:"classification"`
	Latitude       float64                 `json:"latitude"`
	Longitude      float64                 `json:"longitude"`
	Arrival        *geofence.Arrival       `json:"arrival,omitempty"`
}

// OfficeResponse is returned by GET /api/attendance/office
type OfficeResponse struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Radius       float64 `json:"radius"`
	BufferRadius float64 `json:"buffer_radius"`
	Address      string  `json:"address,omitempty"`
	Timezone     string  `json:"timezone"`
	LocalTime    string  `json:"local_time"`
	WorkDate     string  `json:"work_date"`
}

// DeliveryResponse reports how many sessions accepted a broadcast
type DeliveryResponse struct {
	Delivered int       `json:"delivered"`
	SentAt    time.Time `json:"sent_at"`
}
