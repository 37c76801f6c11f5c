package audit

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
) {
	logs := r.Group("/audit-logs")
	logs.Use(authMW)
	{
		logs.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceAuditLog, domain.ActionRead),
			handler.GetAll,
		)
		logs.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceAuditLog, domain.ActionRead),
			handler.GetByID,
		)
	}
}
