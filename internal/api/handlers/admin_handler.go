package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/services"
)

type AdminHandler struct {
	svc       services.AdminService
	dashboard services.DashboardService
}

func NewAdminHandler(svc services.AdminService, dashboard services.DashboardService) *AdminHandler {
	return &AdminHandler{svc: svc, dashboard: dashboard}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AdminHandler.Login", "Email and password are required", err)
		return
	}

	auth, a, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": auth.Token, "admin": a})
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	rows, err := h.svc.ListAdmins(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) GetAdmin(c *gin.Context) {
	a, err := h.svc.GetAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req services.AdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AdminHandler.CreateAdmin", "invalid request body", err)
		return
	}

	a, err := h.svc.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	var req services.AdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AdminHandler.UpdateAdmin", "invalid request body", err)
		return
	}

	a, err := h.svc.UpdateAdmin(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	a, err := h.svc.DeleteAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully", "admin": a})
}

func (h *AdminHandler) ListSubAdmins(c *gin.Context) {
	rows, err := h.svc.ListSubAdmins(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) GetSubAdmin(c *gin.Context) {
	sa, err := h.svc.GetSubAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sa)
}

func (h *AdminHandler) CreateSubAdmin(c *gin.Context) {
	var req services.SubAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AdminHandler.CreateSubAdmin", "invalid request body", err)
		return
	}

	sa, err := h.svc.CreateSubAdmin(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sa)
}

func (h *AdminHandler) UpdateSubAdmin(c *gin.Context) {
	var req services.SubAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "AdminHandler.UpdateSubAdmin", "invalid request body", err)
		return
	}

	sa, err := h.svc.UpdateSubAdmin(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sa)
}

func (h *AdminHandler) DeleteSubAdmin(c *gin.Context) {
	sa, err := h.svc.DeleteSubAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subadmin deleted successfully", "subadmin": sa})
}

func (h *AdminHandler) DashboardCounts(c *gin.Context) {
	res, err := h.dashboard.Counts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) UniversityCounts(c *gin.Context) {
	res, err := h.dashboard.UniversityCounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
