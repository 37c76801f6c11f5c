package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"type:varchar(255);not null"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	EmployeeID   *uuid.UUID `gorm:"type:uuid"`
	IsActive     bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u User) EmployeeIDString() string {
	if u.EmployeeID == nil {
		return ""
	}
	return u.EmployeeID.String()
}
