package leavebalance

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
	balances := r.Group("/leave-balances")
	balances.Use(authMW)
	{
		balances.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveBalance, domain.ActionRead),
			h.GetAll,
		)
		balances.GET("/:id",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveBalance, domain.ActionRead),
			h.GetByID,
		)
		balances.POST("",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveBalance, domain.ActionCreate),
			h.Create,
		)
		balances.POST("/allocate",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveBalance, domain.ActionCreate),
			h.Allocate,
		)
		balances.PUT("/:id",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveBalance, domain.ActionUpdate),
			h.Update,
		)
		balances.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveBalance, domain.ActionDelete),
			h.Delete,
		)
	}
}
