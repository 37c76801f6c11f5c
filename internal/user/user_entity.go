package user

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/auth"
)

// Account is a login account with the linked employee preloaded.
type Account struct {
	auth.User
	Employee *AccountEmployee `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Account) TableName() string {
	return "users"
}

// AccountEmployee is the slice of the employees row shown next to an account.
type AccountEmployee struct {
	ID             uuid.UUID `gorm:"primaryKey"`
	EmployeeNumber string    `gorm:"column:employee_number"`
	FirstName      string    `gorm:"column:first_name"`
	LastName       string    `gorm:"column:last_name"`
}

func (AccountEmployee) TableName() string {
	return "employees"
}

func (e AccountEmployee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

type ListFilter struct {
	Search   string
	Role     string
	IsActive *bool
	Page     int
	PageSize int
}
