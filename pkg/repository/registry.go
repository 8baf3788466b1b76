// Package repository provides data access layer abstractions and registry
package repository

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/jgirmay/geoattend/pkg/models"
)

// Registry provides centralized access to all repositories
type Registry struct {
	AttendanceRepository AttendanceRepository
	EmployeeRepository   EmployeeRepository

	db *gorm.DB
	mu sync.RWMutex
}

// NewRegistry creates a new repository registry
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		db: db,
	}
}

// Initialize initializes all repositories
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return fmt.Errorf("registry requires a database connection")
	}

	r.AttendanceRepository = NewAttendanceRepository(r.db)
	r.EmployeeRepository = NewEmployeeRepository(r.db)

	return nil
}

// Migrate creates or updates the tables owned by this service.
// Production schemas are managed outside the process; this is for dev and tests.
func (r *Registry) Migrate(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.db.WithContext(ctx).AutoMigrate(&models.Employee{}, &models.AttendanceRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable
func (r *Registry) Ping(ctx context.Context) error {
	sqlDB, err := r.GetDB().DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// GetDB returns the database connection
func (r *Registry) GetDB() *gorm.DB {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db
}

// Close closes the registry and all resources
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		sqlDB, err := r.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
