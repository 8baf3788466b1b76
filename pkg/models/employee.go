package models

import "time"

// Employee is owned by the staff directory; attendance only reads it.
type Employee struct {
	ID         string    `json:"id" gorm:"type:varchar(64);primary_key"`
	Name       string    `json:"name" gorm:"type:varchar(255)"`
	Email      string    `json:"email" gorm:"type:varchar(255);index"`
	Department string    `json:"department" gorm:"type:varchar(120)"`
	Position   string    `json:"position" gorm:"type:varchar(120)"`
	Role       string    `json:"role" gorm:"type:varchar(50);default:'staff'"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// EmployeeSummary is the subset of Employee carried on presence sessions and events.
type EmployeeSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

// Summary returns the event-facing view of e.
func (e *Employee) Summary() EmployeeSummary {
	return EmployeeSummary{ID: e.ID, Name: e.Name, Department: e.Department}
}
