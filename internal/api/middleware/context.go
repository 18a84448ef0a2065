package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

// Context keys set by JWTAuth and RequestLogger.
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxEmail     = "email"
	CtxRequestID = "request_id"
)

const (
	HeaderRequestID   = "X-Request-Id"
	HeaderChatSession = "X-Chat-Session"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func abort(c *gin.Context, code utils.Code, msg string) {
	c.AbortWithStatusJSON(code.Status(), apiError{Code: code, Message: msg})
}

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

// Role returns the caller's role, normalised to lower case.
func Role(c *gin.Context) models.Role {
	return models.Role(strings.ToLower(strings.TrimSpace(c.GetString(CtxRole))))
}
