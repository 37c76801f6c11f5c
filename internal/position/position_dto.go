package position

type CreatePositionRequest struct {
	Title        string   `json:"title" binding:"required,max=120"`
	DepartmentID string   `json:"department_id" binding:"required,uuid"`
	Requirements []string `json:"requirements" binding:"omitempty,dive,max=200"`
	MinSalary    *float64 `json:"min_salary" binding:"omitempty,gte=0"`
}

type UpdatePositionRequest struct {
	Title        string   `json:"title" binding:"required,max=120"`
	DepartmentID string   `json:"department_id" binding:"required,uuid"`
	Requirements []string `json:"requirements" binding:"omitempty,dive,max=200"`
	MinSalary    *float64 `json:"min_salary" binding:"omitempty,gte=0"`
	IsActive     *bool    `json:"is_active"`
}

type ListPositionsRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Active       *bool  `form:"active"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

type PositionResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	DepartmentID   string   `json:"department_id"`
	DepartmentName string   `json:"department_name,omitempty"`
	Requirements   []string `json:"requirements"`
	MinSalary      *float64 `json:"min_salary,omitempty"`
	IsActive       bool     `json:"is_active"`
}

type PositionOptionResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DepartmentID string `json:"department_id"`
}
