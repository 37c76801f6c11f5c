package leavepolicy

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
	policies := r.Group("/leave-policies")
	policies.Use(authMW)
	{
		policies.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceLeavePolicy, domain.ActionRead), h.GetAll)
		policies.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceLeavePolicy, domain.ActionRead), h.GetByID)
		policies.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceLeavePolicy, domain.ActionCreate), h.Create)
		policies.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceLeavePolicy, domain.ActionUpdate), h.Update)
		policies.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceLeavePolicy, domain.ActionDelete), h.Delete)
	}
}
