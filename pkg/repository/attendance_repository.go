package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jgirmay/geoattend/pkg/models"
)

// AttendanceRepositoryImpl implements AttendanceRepository
type AttendanceRepositoryImpl struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &AttendanceRepositoryImpl{db: db}
}

// GetByEmployeeDate retrieves the record for (employeeID, workDate)
func (r *AttendanceRepositoryImpl) GetByEmployeeDate(ctx context.Context, employeeID, workDate string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND work_date = ?", employeeID, workDate).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RecordCheckIn performs a single INSERT ... ON CONFLICT DO UPDATE ... WHERE check_in_time IS NULL.
// Concurrent callers for the same (employee, date) race inside the store and exactly one wins.
func (r *AttendanceRepositoryImpl) RecordCheckIn(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	table := models.AttendanceRecord{}.TableName()

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "work_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"check_in_time",
				"check_in_latitude",
				"check_in_longitude",
				"check_in_distance",
				"notes",
				"device_info",
				"updated_at",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: table + ".check_in_time IS NULL"},
				clause.Expr{SQL: table + ".check_out_time IS NULL"},
			}},
		}).
		Create(record)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RecordCheckOut closes an open record. Notes are appended with " | " when one already exists.
func (r *AttendanceRepositoryImpl) RecordCheckOut(ctx context.Context, employeeID, workDate string, update CheckOutUpdate) (bool, error) {
	fields := map[string]interface{}{
		"check_out_time":      update.Time,
		"check_out_latitude":  update.Latitude,
		"check_out_longitude": update.Longitude,
		"check_out_distance":  update.Distance,
		"updated_at":          time.Now(),
	}
	if update.Note != "" {
		fields["notes"] = gorm.Expr(
			"CASE WHEN notes IS NULL OR notes = '' THEN CAST(? AS TEXT) ELSE notes || ' | ' || CAST(? AS TEXT) END",
			update.Note, update.Note,
		)
	}

	result := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("employee_id = ? AND work_date = ?", employeeID, workDate).
		Where("check_in_time IS NOT NULL AND check_out_time IS NULL").
		Updates(fields)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
