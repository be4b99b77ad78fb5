package middleware

import (
	"net/http"

	"appointly/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only for the listed roles.
// It must run after JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ActorRoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "forbidden", "This action is not permitted for role '"+role+"'", "")
	}
}
