package attendance

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPresent      Status = "PRESENT"
	StatusAbsent       Status = "ABSENT"
	StatusLate         Status = "LATE"
	StatusHalfDay      Status = "HALF_DAY"
	StatusWorkFromHome Status = "WORK_FROM_HOME"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusWorkFromHome:
		return true
	}
	return false
}

// Source tells a self-service clock-in apart from a row keyed in by HR.
type Source string

const (
	SourceSelf   Source = "SELF"
	SourceManual Source = "MANUAL"
)

type Attendance struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID     uuid.UUID  `gorm:"type:uuid"`
	AttendanceDate time.Time  `gorm:"column:attendance_date;type:date"`
	ClockIn        *time.Time `gorm:"column:clock_in"`
	ClockOut       *time.Time `gorm:"column:clock_out"`
	Status         Status     `gorm:"column:status"`
	Source         Source     `gorm:"column:source"`
	Notes          string     `gorm:"column:notes"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Attendance) TableName() string {
	return "attendances"
}

// WorkedMinutes is zero until both clock times are known.
func (a Attendance) WorkedMinutes() int {
	if a.ClockIn == nil || a.ClockOut == nil {
		return 0
	}
	return int(a.ClockOut.Sub(*a.ClockIn) / time.Minute)
}
