package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/providers/recaptcha"
	"github.com/yoockh/admission/internal/utils"
)

type RecaptchaHandler struct {
	verifier recaptcha.Verifier // nil when RECAPTCHA_SECRET is unset
}

func NewRecaptchaHandler(v recaptcha.Verifier) *RecaptchaHandler {
	return &RecaptchaHandler{verifier: v}
}

type VerifyRecaptchaRequest struct {
	RecaptchaResponse string `json:"recaptchaResponse" binding:"required"`
}

// Verify passes the siteverify result through unchanged.
func (h *RecaptchaHandler) Verify(c *gin.Context) {
	const op = "RecaptchaHandler.Verify"

	if h.verifier == nil {
		writeError(c, utils.E(utils.CodeNotConfigured, op, "reCAPTCHA is not configured", nil))
		return
	}
	var req VerifyRecaptchaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, op, "recaptchaResponse is required", err)
		return
	}

	res, err := h.verifier.Verify(c.Request.Context(), req.RecaptchaResponse, c.ClientIP())
	if err != nil {
		writeError(c, utils.E(utils.CodeUpstream, op, "failed to verify reCAPTCHA", err))
		return
	}
	c.JSON(http.StatusOK, res)
}
