package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/utils"
)

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

// JWTAuth accepts tokens issued by services.TokenIssuer and sets the caller's
// id, role and email on the context.
func JWTAuth(tokens services.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abort(c, utils.CodeUnauthorized, "missing bearer token")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			abort(c, utils.CodeUnauthorized, "invalid token")
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxEmail, claims.Email)
		c.Next()
	}
}
