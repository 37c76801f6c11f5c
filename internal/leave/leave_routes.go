package leave

import (
	"github.com/gin-gonic/gin"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/middleware"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authMW gin.HandlerFunc,
	rbacService middleware.RBACService,
	idempotency gin.HandlerFunc,
) {
	leaves := r.Group("/leave-requests")
	leaves.Use(authMW)
	{
		leaves.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRequest, domain.ActionRead),
			handler.GetAll,
		)

		leaves.GET("/export",
			middleware.RateLimitByUser(0.2, 1),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRequest, domain.ActionExport),
			handler.Export,
		)

		leaves.GET("/calendar.ics",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRequest, domain.ActionRead),
			handler.Calendar,
		)

		leaves.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRequest, domain.ActionRead),
			handler.GetByID,
		)

		leaves.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRequest, domain.ActionCreate),
			idempotency,
			handler.Create,
		)

		leaves.PUT("/:id",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRequest, domain.ActionUpdate),
			handler.Update,
		)

		leaves.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRequest, domain.ActionDelete),
			handler.Delete,
		)
	}
}
