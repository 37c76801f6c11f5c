package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "ACTIVE"
	StatusProbation  EmploymentStatus = "PROBATION"
	StatusOnLeave    EmploymentStatus = "ON_LEAVE"
	StatusSuspended  EmploymentStatus = "SUSPENDED"
	StatusTerminated EmploymentStatus = "TERMINATED"
)

func (s EmploymentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusProbation, StatusOnLeave, StatusSuspended, StatusTerminated:
		return true
	}
	return false
}

// CanFileLeave reports whether an employee in this status may submit leave.
func (s EmploymentStatus) CanFileLeave() bool {
	switch s {
	case StatusActive, StatusProbation:
		return true
	case StatusOnLeave, StatusSuspended, StatusTerminated:
		return false
	}
	return false
}

type Employee struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	EmployeeNumber   string           `gorm:"column:employee_number"`
	FirstName        string           `gorm:"column:first_name"`
	LastName         string           `gorm:"column:last_name"`
	Email            string           `gorm:"column:email"`
	Phone            string           `gorm:"column:phone"`
	PositionID       *uuid.UUID       `gorm:"type:uuid"`
	DepartmentID     *uuid.UUID       `gorm:"type:uuid"`
	ManagerID        *uuid.UUID       `gorm:"type:uuid"`
	EmploymentStatus EmploymentStatus `gorm:"column:employment_status"`
	HireDate         time.Time        `gorm:"column:hire_date;type:date"`
	TerminationDate  *time.Time       `gorm:"column:termination_date;type:date"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
