package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkDateLayout is the storage format of AttendanceRecord.WorkDate.
const WorkDateLayout = "2006-01-02"

// AttendanceRecord is one employee's attendance for one local calendar date.
// (employee_id, work_date) is unique; the store is the arbiter of that.
type AttendanceRecord struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	EmployeeID        string         `json:"employee_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_attendance_employee_date,priority:1"`
	WorkDate          string         `json:"work_date" gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_employee_date,priority:2;index"`
	CheckInTime       *time.Time     `json:"check_in_time"`
	CheckOutTime      *time.Time     `json:"check_out_time"`
	CheckInLatitude   *float64       `json:"check_in_latitude"`
	CheckInLongitude  *float64       `json:"check_in_longitude"`
	CheckInDistance   *float64       `json:"check_in_distance"`
	CheckOutLatitude  *float64       `json:"check_out_latitude"`
	CheckOutLongitude *float64       `json:"check_out_longitude"`
	CheckOutDistance  *float64       `json:"check_out_distance"`
	Notes             string         `json:"notes" gorm:"type:text"`
	DeviceInfo        datatypes.JSON `json:"device_info,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// CheckedIn reports whether a check-in has been recorded.
func (r *AttendanceRecord) CheckedIn() bool {
	return r != nil && r.CheckInTime != nil
}

// CheckedOut reports whether a check-out has been recorded.
func (r *AttendanceRecord) CheckedOut() bool {
	return r != nil && r.CheckOutTime != nil
}
