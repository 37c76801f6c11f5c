package payroll

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
	idempotency gin.HandlerFunc,
) {
	payrolls := r.Group("/payrolls")
	payrolls.Use(authMW)
	{
		payrolls.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionRead),
			h.GetAll,
		)
		payrolls.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionRead), h.GetByID)
		payrolls.GET("/:id/payslip",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionRead),
			h.Payslip,
		)

		payrolls.POST("",
			middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionCreate),
			idempotency,
			h.Create,
		)
		payrolls.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionUpdate), h.Update)
		payrolls.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionDelete), h.Delete)

		payrolls.POST("/:id/process", middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionUpdate), h.Process)
		payrolls.POST("/:id/pay", middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionUpdate), h.Pay)
		payrolls.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionUpdate), h.Cancel)
	}
}
