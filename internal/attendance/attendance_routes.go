package attendance

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
	attendances := r.Group("/attendances")
	attendances.Use(authMW)
	{
		clockLimit := middleware.RateLimitByUser(1, 3)
		attendances.POST("/clock-in", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionClock), clockLimit, h.ClockIn)
		attendances.POST("/clock-out", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionClock), clockLimit, h.ClockOut)

		attendances.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionRead), h.GetAll)
		attendances.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionRead), h.GetByID)
		attendances.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionCreate), h.Create)
		attendances.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionUpdate), h.Update)
		attendances.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionDelete), h.Delete)
	}
}
