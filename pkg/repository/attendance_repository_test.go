package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jgirmay/geoattend/pkg/config"
	"github.com/jgirmay/geoattend/pkg/database"
	"github.com/jgirmay/geoattend/pkg/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Type: "sqlite", Path: ":memory:", MaxConnections: 1})
	require.NoError(t, err)

	registry := NewRegistry(db)
	require.NoError(t, registry.Initialize())
	require.NoError(t, registry.Migrate(context.Background()))

	t.Cleanup(func() { _ = registry.Close() })
	return db
}

func newCheckIn(employeeID, date string, at time.Time, note string) *models.AttendanceRecord {
	lat, lon, dist := 11.5518, 104.9283, 3.2
	return &models.AttendanceRecord{
		ID:               uuid.New(),
		EmployeeID:       employeeID,
		WorkDate:         date,
		CheckInTime:      &at,
		CheckInLatitude:  &lat,
		CheckInLongitude: &lon,
		CheckInDistance:  &dist,
		Notes:            note,
	}
}

func TestRecordCheckIn_OncePerDay(t *testing.T) {
	repo := NewAttendanceRepository(setupTestDB(t))
	ctx := context.Background()
	first := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	ok, err := repo.RecordCheckIn(ctx, newCheckIn("emp-1", "2026-03-02", first, "morning"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RecordCheckIn(ctx, newCheckIn("emp-1", "2026-03-02", first.Add(time.Hour), "again"))
	require.NoError(t, err)
	assert.False(t, ok, "second check-in for the same date must not apply")

	rec, err := repo.GetByEmployeeDate(ctx, "emp-1", "2026-03-02")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.WithinDuration(t, first, *rec.CheckInTime, time.Second)
	assert.Equal(t, "morning", rec.Notes)

	// a different date is a different record
	ok, err = repo.RecordCheckIn(ctx, newCheckIn("emp-1", "2026-03-03", first.Add(24*time.Hour), ""))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordCheckIn_ConcurrentSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	const workers = 25
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.RecordCheckIn(ctx, newCheckIn("emp-race", "2026-03-02", now, ""))
			if assert.NoError(t, err) && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)

	var count int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).
		Where("employee_id = ? AND work_date = ?", "emp-race", "2026-03-02").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordCheckOut(t *testing.T) {
	repo := NewAttendanceRepository(setupTestDB(t))
	ctx := context.Background()
	in := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)
	update := CheckOutUpdate{Time: out, Latitude: 11.5, Longitude: 104.9, Distance: 42.5, Note: "leaving"}

	t.Run("no record", func(t *testing.T) {
		ok, err := repo.RecordCheckOut(ctx, "emp-none", "2026-03-02", update)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("closes open record and appends note", func(t *testing.T) {
		_, err := repo.RecordCheckIn(ctx, newCheckIn("emp-2", "2026-03-02", in, "early"))
		require.NoError(t, err)

		ok, err := repo.RecordCheckOut(ctx, "emp-2", "2026-03-02", update)
		require.NoError(t, err)
		assert.True(t, ok)

		rec, err := repo.GetByEmployeeDate(ctx, "emp-2", "2026-03-02")
		require.NoError(t, err)
		require.NotNil(t, rec.CheckOutTime)
		assert.WithinDuration(t, out, *rec.CheckOutTime, time.Second)
		assert.Equal(t, "early | leaving", rec.Notes)
		require.NotNil(t, rec.CheckOutDistance)
		assert.Equal(t, 42.5, *rec.CheckOutDistance)
	})

	t.Run("second checkout does not apply", func(t *testing.T) {
		ok, err := repo.RecordCheckOut(ctx, "emp-2", "2026-03-02", update)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("note without prior note is stored as is", func(t *testing.T) {
		_, err := repo.RecordCheckIn(ctx, newCheckIn("emp-3", "2026-03-02", in, ""))
		require.NoError(t, err)

		_, err = repo.RecordCheckOut(ctx, "emp-3", "2026-03-02", update)
		require.NoError(t, err)

		rec, err := repo.GetByEmployeeDate(ctx, "emp-3", "2026-03-02")
		require.NoError(t, err)
		assert.Equal(t, "leaving", rec.Notes)
	})

	t.Run("checked out record refuses a new check-in", func(t *testing.T) {
		ok, err := repo.RecordCheckIn(ctx, newCheckIn("emp-2", "2026-03-02", out.Add(time.Hour), ""))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGetByEmployeeDate_Missing(t *testing.T) {
	repo := NewAttendanceRepository(setupTestDB(t))

	rec, err := repo.GetByEmployeeDate(context.Background(), "nobody", "2026-03-02")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestEmployeeRepository(t *testing.T) {
	repo := NewEmployeeRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "emp-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Save(ctx, &models.Employee{ID: "emp-1", Name: "Sokha", Department: "Finance", IsActive: true}))
	require.NoError(t, repo.Save(ctx, &models.Employee{ID: "emp-1", Name: "Sokha Chan", Department: "Finance", IsActive: true}))

	emp, err := repo.GetByID(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Sokha Chan", emp.Name)
	assert.True(t, emp.IsActive)
}
