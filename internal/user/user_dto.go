package user

type ListUsersRequest struct {
	Search   string `form:"q"`
	Role     string `form:"role" binding:"omitempty,oneof=ADMIN HR MANAGER EMPLOYEE"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// UpdateUserRequest changes role and/or active flag; at least one is required.
type UpdateUserRequest struct {
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN HR MANAGER EMPLOYEE"`
	IsActive *bool   `json:"is_active"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

type UserResponse struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	IsActive       bool    `json:"is_active"`
	EmployeeID     string  `json:"employee_id,omitempty"`
	EmployeeNumber string  `json:"employee_number,omitempty"`
	FullName       string  `json:"full_name,omitempty"`
	LastLoginAt    *string `json:"last_login_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
