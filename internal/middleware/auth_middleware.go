package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	autherrors "github.com/mrpavithran/Hrms-Backend/internal/auth/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/auth/token"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/response"
)

// TokenParser is satisfied by *token.Manager.
type TokenParser interface {
	Parse(raw, expectedType string) (*token.Claims, error)
}

// AuthMiddleware accepts a Bearer header or the access_token cookie and puts
// user_id, employee_id and role into both the gin and the request context.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
			tokenString = strings.TrimSpace(bearer)
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		claims, err := parser.Parse(tokenString, token.TypeAccess)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				abortWith(c, autherrors.ErrTokenExpired)
				return
			}
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		role, err := domain.ParseRole(claims.Role)
		if err != nil {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("employee_id", claims.EmployeeID)
		c.Set("role", role.String())

		ctx := contextutil.WithActor(c.Request.Context(), contextutil.Actor{
			UserID:     claims.UserID,
			EmployeeID: claims.EmployeeID,
			Role:       role.String(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RoleMiddleware admits only the listed roles.
func RoleMiddleware(allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := domain.ParseRole(c.GetString("role"))
		if err != nil {
			abortWith(c, autherrors.ErrForbidden)
			return
		}

		for _, r := range allowed {
			if r == role {
				c.Next()
				return
			}
		}

		abortWith(c, autherrors.ErrForbidden)
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}
