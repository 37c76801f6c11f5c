package attendance

type ClockRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

type CreateAttendanceRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	Date       string  `json:"date" binding:"required"`
	Status     string  `json:"status" binding:"required,oneof=PRESENT ABSENT LATE HALF_DAY WORK_FROM_HOME"`
	ClockIn    *string `json:"clock_in"`
	ClockOut   *string `json:"clock_out"`
	Notes      string  `json:"notes" binding:"omitempty,max=500"`
}

type UpdateAttendanceRequest struct {
	Status   string  `json:"status" binding:"required,oneof=PRESENT ABSENT LATE HALF_DAY WORK_FROM_HOME"`
	ClockIn  *string `json:"clock_in"`
	ClockOut *string `json:"clock_out"`
	Notes    string  `json:"notes" binding:"omitempty,max=500"`
}

type ListAttendancesRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type AttendanceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	AttendanceDate string  `json:"attendance_date"`
	ClockIn        *string `json:"clock_in,omitempty"`
	ClockOut       *string `json:"clock_out,omitempty"`
	WorkedMinutes  int     `json:"worked_minutes,omitempty"`
	Status         string  `json:"status"`
	Source         string  `json:"source"`
	Notes          string  `json:"notes,omitempty"`
}
