package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authMW gin.HandlerFunc, rbacService middleware.RBACService) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.08, 5), handler.Login)
		auth.POST("/refresh", middleware.RateLimitByIP(0.2, 5), handler.Refresh)

		auth.GET("/me", authMW, middleware.RateLimitByUser(2, 5), handler.Me)
		auth.POST("/logout", authMW, middleware.RateLimitByUser(2, 5), handler.Logout)
		auth.PUT("/password", authMW, middleware.RateLimitByUser(0.1, 2), handler.ChangePassword)
		auth.POST("/register",
			authMW,
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, domain.ResourceUser, domain.ActionCreate),
			handler.Register,
		)
	}
}
