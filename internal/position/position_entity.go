package position

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Position struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Title        string              `gorm:"column:title"`
	DepartmentID uuid.UUID           `gorm:"type:uuid"`
	Department   *PositionDepartment `gorm:"foreignKey:DepartmentID;references:ID"`
	Requirements []string            `gorm:"column:requirements;serializer:json"`
	MinSalary    decimal.NullDecimal `gorm:"column:min_salary;type:numeric(14,2)"`
	IsActive     bool                `gorm:"column:is_active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Position) TableName() string {
	return "positions"
}

// PositionDepartment is the read-only slice of a department preloaded with
// a position.
type PositionDepartment struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (PositionDepartment) TableName() string {
	return "departments"
}
