package position

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
	positions := r.Group("/positions")
	positions.Use(authMW)
	{
		positions.GET("", middleware.RBACAuthorize(rbacService, domain.ResourcePosition, domain.ActionRead), h.GetAll)
		positions.GET("/options", middleware.RBACAuthorize(rbacService, domain.ResourcePosition, domain.ActionRead), h.GetOptions)
		positions.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourcePosition, domain.ActionRead), h.GetByID)
		positions.POST("", middleware.RBACAuthorize(rbacService, domain.ResourcePosition, domain.ActionCreate), h.Create)
		positions.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourcePosition, domain.ActionUpdate), h.Update)
		positions.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourcePosition, domain.ActionDelete), h.Delete)
	}
}
