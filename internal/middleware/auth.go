package middleware

import (
	"net/http"
	"strings"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/session"
	"rigor-logistics/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token and attaches the caller's
// session. Websocket upgrades cannot set headers from a browser, so a
// `token` query parameter is accepted as a fallback.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token, cfg.JWT.Secret, cfg.JWT.Issuer)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		role := session.Role(claims.Role)
		if role != session.RoleAdmin && role != session.RoleTrucker {
			utils.ErrorResponse(c, http.StatusForbidden, "Unknown role")
			c.Abort()
			return
		}

		session.Attach(c, session.Session{
			UserID: claims.UserID,
			Role:   role,
			Email:  claims.Email,
		})

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
