package leave

type CreateLeaveRequest struct {
	// EmployeeID defaults to the caller's own employee record.
	EmployeeID  string   `json:"employee_id" binding:"omitempty,uuid"`
	PolicyID    string   `json:"policy_id" binding:"required,uuid"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	Reason      string   `json:"reason" binding:"required,max=1000"`
	Attachments []string `json:"attachments" binding:"omitempty,max=10,dive,max=500"`
}

type UpdateLeaveRequest struct {
	Status             string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED CANCELLED"`
	RejectionReason    string `json:"rejection_reason" binding:"max=1000"`
	CancellationReason string `json:"cancellation_reason" binding:"max=1000"`
}

type ListLeaveRequestsRequest struct {
	Status     string `form:"status"`
	EmployeeID string `form:"employee_id"`
	PolicyID   string `form:"policy_id"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type LeaveResponse struct {
	ID                 string   `json:"id"`
	EmployeeID         string   `json:"employee_id"`
	EmployeeName       string   `json:"employee_name,omitempty"`
	PolicyID           string   `json:"policy_id"`
	PolicyName         string   `json:"policy_name,omitempty"`
	LeaveType          string   `json:"leave_type,omitempty"`
	BalanceYear        int      `json:"balance_year"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	Days               int      `json:"days"`
	Reason             string   `json:"reason"`
	Status             string   `json:"status"`
	Attachments        []string `json:"attachments"`
	AppliedAt          string   `json:"applied_at"`
	ApprovedBy         *string  `json:"approved_by,omitempty"`
	ApprovedAt         *string  `json:"approved_at,omitempty"`
	RejectionReason    *string  `json:"rejection_reason,omitempty"`
	RejectedAt         *string  `json:"rejected_at,omitempty"`
	CancellationReason *string  `json:"cancellation_reason,omitempty"`
	CancelledAt        *string  `json:"cancelled_at,omitempty"`
}
