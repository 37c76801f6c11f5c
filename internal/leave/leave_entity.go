package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/employee"
	"github.com/mrpavithran/Hrms-Backend/internal/leavepolicy"
)

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_status"`
	PolicyID    uuid.UUID `gorm:"type:uuid;not null"`
	BalanceYear int       `gorm:"not null"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`
	Days        int       `gorm:"not null"`
	Reason      string    `gorm:"type:text;not null"`
	Status      Status    `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_employee_status"`
	Attachments []string  `gorm:"type:jsonb;serializer:json;not null"`
	AppliedAt   time.Time `gorm:"not null"`

	ApprovedBy         *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt         *time.Time
	RejectionReason    *string `gorm:"type:text"`
	RejectedAt         *time.Time
	CancellationReason *string `gorm:"type:text"`
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Employee *employee.Employee       `gorm:"foreignKey:EmployeeID"`
	Policy   *leavepolicy.LeavePolicy `gorm:"foreignKey:PolicyID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
