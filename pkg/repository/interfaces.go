package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks AttendanceRepository,EmployeeRepository

import (
	"context"
	"errors"
	"time"

	"github.com/jgirmay/geoattend/pkg/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// CheckOutUpdate carries the fields written when closing a day's record.
type CheckOutUpdate struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
	Distance  float64
	Note      string
}

// AttendanceRepository defines operations for attendance records
type AttendanceRepository interface {
	// GetByEmployeeDate retrieves the record for an employee on a work date, nil when none exists
	GetByEmployeeDate(ctx context.Context, employeeID, workDate string) (*models.AttendanceRecord, error)

	// RecordCheckIn atomically inserts the day's record or fills an existing one that has no check-in.
	// It returns false when a check-in already exists for (employee, date).
	RecordCheckIn(ctx context.Context, record *models.AttendanceRecord) (bool, error)

	// RecordCheckOut sets check-out fields on the day's record only while it is checked in and not checked out.
	// It returns false when no such open record matched.
	RecordCheckOut(ctx context.Context, employeeID, workDate string, update CheckOutUpdate) (bool, error)
}

// EmployeeRepository defines read access to the staff directory
type EmployeeRepository interface {
	// GetByID retrieves an employee, ErrNotFound when absent
	GetByID(ctx context.Context, id string) (*models.Employee, error)

	// Save creates or replaces an employee row
	Save(ctx context.Context, employee *models.Employee) error
}
