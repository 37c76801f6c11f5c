package payroll

type CreatePayrollRequest struct {
	EmployeeID  string   `json:"employee_id" binding:"required,uuid"`
	PeriodStart string   `json:"period_start" binding:"required"`
	PeriodEnd   string   `json:"period_end" binding:"required"`
	BaseSalary  *float64 `json:"base_salary" binding:"required"`
	Allowance   float64  `json:"allowance"`
	Deduction   float64  `json:"deduction"`
}

type UpdatePayrollRequest struct {
	PeriodStart string   `json:"period_start" binding:"required"`
	PeriodEnd   string   `json:"period_end" binding:"required"`
	BaseSalary  *float64 `json:"base_salary" binding:"required"`
	Allowance   float64  `json:"allowance"`
	Deduction   float64  `json:"deduction"`
}

type ListPayrollsRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
	Year       int    `form:"year"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type PayrollResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	BaseSalary   float64 `json:"base_salary"`
	Allowance    float64 `json:"allowance"`
	Deduction    float64 `json:"deduction"`
	NetSalary    float64 `json:"net_salary"`
	Status       string  `json:"status"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
	PaidAt       *string `json:"paid_at,omitempty"`
	CancelledAt  *string `json:"cancelled_at,omitempty"`
}
