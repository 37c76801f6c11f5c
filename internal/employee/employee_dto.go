package employee

type CreateEmployeeRequest struct {
	FirstName        string `json:"first_name" binding:"required,max=100"`
	LastName         string `json:"last_name" binding:"required,max=100"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"omitempty,max=30"`
	PositionID       string `json:"position_id" binding:"omitempty,uuid"`
	DepartmentID     string `json:"department_id" binding:"omitempty,uuid"`
	ManagerID        string `json:"manager_id" binding:"omitempty,uuid"`
	EmploymentStatus string `json:"employment_status" binding:"omitempty,oneof=ACTIVE PROBATION ON_LEAVE SUSPENDED"`
	HireDate         string `json:"hire_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FirstName        string `json:"first_name" binding:"required,max=100"`
	LastName         string `json:"last_name" binding:"required,max=100"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"omitempty,max=30"`
	PositionID       string `json:"position_id" binding:"omitempty,uuid"`
	DepartmentID     string `json:"department_id" binding:"omitempty,uuid"`
	ManagerID        string `json:"manager_id" binding:"omitempty,uuid"`
	EmploymentStatus string `json:"employment_status" binding:"required,oneof=ACTIVE PROBATION ON_LEAVE SUSPENDED TERMINATED"`
	HireDate         string `json:"hire_date" binding:"required"`
}

type ListEmployeesRequest struct {
	Search           string `form:"q"`
	DepartmentID     string `form:"department_id" binding:"omitempty,uuid"`
	EmploymentStatus string `form:"employment_status"`
	SortBy           string `form:"sort_by"`
	SortDir          string `form:"sort_dir"`
	Page             int    `form:"page"`
	PageSize         int    `form:"page_size"`
}

type EmployeeResponse struct {
	ID               string `json:"id"`
	EmployeeNumber   string `json:"employee_number"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	PositionID       string `json:"position_id,omitempty"`
	DepartmentID     string `json:"department_id,omitempty"`
	ManagerID        string `json:"manager_id,omitempty"`
	EmploymentStatus string `json:"employment_status"`
	HireDate         string `json:"hire_date"`
	TerminationDate  string `json:"termination_date,omitempty"`
}

type EmployeeOptionResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
}
