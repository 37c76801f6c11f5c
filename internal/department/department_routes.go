package department

import (
	"github.com/gin-gonic/gin"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/middleware"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	authMW gin.HandlerFunc,
	rbacService middleware.RBACService,
) {
	departments := r.Group("/departments")
	departments.Use(authMW)
	{
		departments.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionRead), h.GetAll)
		departments.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionCreate), h.Create)
		departments.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionRead), h.GetByID)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionUpdate), h.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionDelete), h.Delete)
	}
}
