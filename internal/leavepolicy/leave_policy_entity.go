package leavepolicy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaveType string

const (
	TypeAnnual    LeaveType = "ANNUAL"
	TypeSick      LeaveType = "SICK"
	TypeMaternity LeaveType = "MATERNITY"
	TypePaternity LeaveType = "PATERNITY"
	TypeUnpaid    LeaveType = "UNPAID"
)

func (t LeaveType) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypeMaternity, TypePaternity, TypeUnpaid:
		return true
	}
	return false
}

type LeavePolicy struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"column:name"`
	LeaveType   LeaveType       `gorm:"column:leave_type"`
	DaysAllowed decimal.Decimal `gorm:"column:days_allowed;type:numeric(6,2)"`
	Description string          `gorm:"column:description"`
	IsActive    bool            `gorm:"column:is_active"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (LeavePolicy) TableName() string {
	return "leave_policies"
}
