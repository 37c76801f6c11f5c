package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/employee"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusProcessed Status = "PROCESSED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusProcessed, StatusCancelled},
	StatusProcessed: {StatusPaid, StatusCancelled},
}

// CanTransition reports whether a payroll in s may move to next. PAID and
// CANCELLED are terminal.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Payroll struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID          `gorm:"type:uuid"`
	Employee    *employee.Employee `gorm:"foreignKey:EmployeeID"`
	PeriodStart time.Time          `gorm:"type:date"`
	PeriodEnd   time.Time          `gorm:"type:date"`
	BaseSalary  decimal.Decimal    `gorm:"type:numeric(14,2)"`
	Allowance   decimal.Decimal    `gorm:"type:numeric(14,2)"`
	Deduction   decimal.Decimal    `gorm:"type:numeric(14,2)"`
	NetSalary   decimal.Decimal    `gorm:"type:numeric(14,2)"`
	Status      Status             `gorm:"column:status"`
	CreatedBy   *uuid.UUID         `gorm:"type:uuid"`
	ProcessedAt *time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Payroll) TableName() string {
	return "payrolls"
}
