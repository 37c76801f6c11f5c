package leavebalance

type CreateLeaveBalanceRequest struct {
	EmployeeID string   `json:"employee_id" binding:"required,uuid"`
	PolicyID   string   `json:"policy_id" binding:"required,uuid"`
	Year       int      `json:"year" binding:"required,gte=2000,lte=2100"`
	DaysUsed   *float64 `json:"days_used" binding:"omitempty,gte=0"`
}

type UpdateLeaveBalanceRequest struct {
	DaysUsed *float64 `json:"days_used" binding:"required,gte=0"`
}

type AllocateLeaveBalancesRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Year       int    `json:"year" binding:"required,gte=2000,lte=2100"`
}

type ListLeaveBalancesRequest struct {
	EmployeeID string `form:"employee_id"`
	PolicyID   string `form:"policy_id"`
	Year       int    `form:"year"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type LeaveBalanceResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	PolicyID      string  `json:"policy_id"`
	Year          int     `json:"year"`
	DaysUsed      float64 `json:"days_used"`
	DaysRemaining float64 `json:"days_remaining"`
	UpdatedAt     string  `json:"updated_at"`
}
