package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

// RequireRole must run after JWTAuth. Requests whose role is not listed get 403.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	allow := make(map[models.Role]bool, len(allowed))
	for _, r := range allowed {
		allow[r] = true
	}
	return func(c *gin.Context) {
		if role := Role(c); role == "" || !allow[role] {
			abort(c, utils.CodeForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(models.RoleAdmin) }
