package domain

// Resources guarded by the RBAC middleware.
const (
	ResourceEmployee     = "employee"
	ResourceDepartment   = "department"
	ResourceLeavePolicy  = "leave_policy"
	ResourceLeaveBalance = "leave_balance"
	ResourceLeaveRequest = "leave_request"
	ResourceAuditLog     = "audit_log"
	ResourceUser         = "user"
	ResourcePosition     = "position"
	ResourceAttendance   = "attendance"
	ResourcePayroll      = "payroll"
)

const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
	// ActionClock covers self-service clock-in and clock-out.
	ActionClock = "clock"
)

type Permission struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func (p Permission) String() string {
	return p.Resource + ":" + p.Action
}

// OwnPermissions lists what r grants on top of its parent role.
func (r Role) OwnPermissions() []Permission {
	switch r {
	case RoleEmployee:
		return []Permission{
			{ResourceLeavePolicy, ActionRead},
			{ResourceLeaveBalance, ActionRead},
			{ResourceLeaveRequest, ActionRead},
			{ResourceLeaveRequest, ActionCreate},
			{ResourceLeaveRequest, ActionUpdate},
			{ResourceLeaveRequest, ActionDelete},
			{ResourceAttendance, ActionRead},
			{ResourceAttendance, ActionClock},
			{ResourcePayroll, ActionRead},
		}
	case RoleManager:
		return []Permission{
			{ResourceEmployee, ActionRead},
			{ResourceDepartment, ActionRead},
			{ResourcePosition, ActionRead},
			{ResourceLeaveRequest, ActionExport},
		}
	case RoleHR:
		return []Permission{
			{ResourceEmployee, ActionCreate},
			{ResourceEmployee, ActionUpdate},
			{ResourceEmployee, ActionDelete},
			{ResourceDepartment, ActionCreate},
			{ResourceDepartment, ActionUpdate},
			{ResourceDepartment, ActionDelete},
			{ResourceLeavePolicy, ActionCreate},
			{ResourceLeavePolicy, ActionUpdate},
			{ResourceLeavePolicy, ActionDelete},
			{ResourceLeaveBalance, ActionCreate},
			{ResourceLeaveBalance, ActionUpdate},
			{ResourceLeaveBalance, ActionDelete},
			{ResourcePosition, ActionCreate},
			{ResourcePosition, ActionUpdate},
			{ResourcePosition, ActionDelete},
			{ResourceAttendance, ActionCreate},
			{ResourceAttendance, ActionUpdate},
			{ResourceAttendance, ActionDelete},
			{ResourcePayroll, ActionCreate},
			{ResourcePayroll, ActionUpdate},
			{ResourcePayroll, ActionDelete},
			{ResourceAuditLog, ActionRead},
			{ResourceUser, ActionCreate},
		}
	case RoleAdmin:
		return []Permission{
			{ResourceUser, ActionRead},
			{ResourceUser, ActionUpdate},
		}
	}
	return nil
}

type EnforceRequest struct {
	Role     Role   `json:"role"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
