package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/api/middleware"
	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// writeError renders err as {code, message}. Only AppError messages reach the
// client; anything else is logged and shown as the bare status text.
func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	msg := http.StatusText(status)

	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	if ae == nil || status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, APIError{Code: utils.CodeOf(err), Message: msg})
}

func badRequest(c *gin.Context, op, msg string, err error) {
	writeError(c, utils.E(utils.CodeInvalidArgument, op, msg, err))
}

func requireUserID(c *gin.Context) (string, bool) {
	if id := middleware.UserID(c); id != "" {
		return id, true
	}
	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

// actor returns the authenticated caller as set by middleware.JWTAuth.
func actor(c *gin.Context) (services.Actor, bool) {
	id, ok := requireUserID(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: id, Role: middleware.Role(c)}, true
}

// requireSelf lets students act on their own record only; admins act on any.
func requireSelf(c *gin.Context, op, id string) bool {
	a, ok := actor(c)
	if !ok {
		return false
	}
	if a.Role == models.RoleAdmin || a.ID == id {
		return true
	}
	writeError(c, utils.E(utils.CodeForbidden, op, "forbidden", nil))
	return false
}
