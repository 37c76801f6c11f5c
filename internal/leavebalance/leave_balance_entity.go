package leavebalance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaveBalance struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_policy_year"`
	PolicyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_policy_year"`
	Year          int             `gorm:"not null;uniqueIndex:uq_leave_balances_employee_policy_year"`
	DaysUsed      decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	DaysRemaining decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// Consume moves days from remaining to used. It reports false and leaves the
// row untouched when remaining would drop below zero.
func (b *LeaveBalance) Consume(days decimal.Decimal) bool {
	if b.DaysRemaining.LessThan(days) {
		return false
	}
	b.DaysUsed = b.DaysUsed.Add(days)
	b.DaysRemaining = b.DaysRemaining.Sub(days)
	return true
}

// Release gives days back, clamped so used stays >= 0 and remaining stays
// <= allowed.
func (b *LeaveBalance) Release(days, allowed decimal.Decimal) {
	b.DaysUsed = decimal.Max(decimal.Zero, b.DaysUsed.Sub(days))
	b.DaysRemaining = decimal.Min(allowed, b.DaysRemaining.Add(days))
}
