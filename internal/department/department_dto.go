package department

type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description"`
	ManagerID   string `json:"manager_id" binding:"omitempty,uuid"`
	ParentID    string `json:"parent_id" binding:"omitempty,uuid"`
}

type UpdateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description"`
	ManagerID   string `json:"manager_id" binding:"omitempty,uuid"`
	ParentID    string `json:"parent_id" binding:"omitempty,uuid"`
	IsActive    *bool  `json:"is_active"`
}

type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ManagerID   string `json:"manager_id,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
