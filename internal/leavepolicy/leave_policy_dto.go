package leavepolicy

type CreateLeavePolicyRequest struct {
	Name        string   `json:"name" binding:"required,max=120"`
	LeaveType   string   `json:"leave_type" binding:"required,oneof=ANNUAL SICK MATERNITY PATERNITY UNPAID"`
	DaysAllowed *float64 `json:"days_allowed" binding:"required,gte=0,lte=366"`
	Description string   `json:"description"`
}

type UpdateLeavePolicyRequest struct {
	Name        string   `json:"name" binding:"required,max=120"`
	LeaveType   string   `json:"leave_type" binding:"required,oneof=ANNUAL SICK MATERNITY PATERNITY UNPAID"`
	DaysAllowed *float64 `json:"days_allowed" binding:"required,gte=0,lte=366"`
	Description string   `json:"description"`
	IsActive    *bool    `json:"is_active"`
}

type ListLeavePoliciesRequest struct {
	LeaveType string `form:"leave_type"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

type LeavePolicyResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	LeaveType   string  `json:"leave_type"`
	DaysAllowed float64 `json:"days_allowed"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}
