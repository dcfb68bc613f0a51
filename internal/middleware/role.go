package middleware

import (
	"net/http"

	"rigor-logistics/internal/session"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
)

func RoleMiddleware(allowedRoles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, exists := session.FromGin(c)
		if !exists {
			utils.ErrorResponse(c, http.StatusForbidden, "Role not found in context")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if s.Role == allowedRole {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(session.RoleAdmin)
}

func TruckerOnly() gin.HandlerFunc {
	return RoleMiddleware(session.RoleTrucker)
}
