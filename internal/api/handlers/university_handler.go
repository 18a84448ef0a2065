package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/utils"
)

type UniversityHandler struct {
	svc services.UniversityService
}

func NewUniversityHandler(svc services.UniversityService) *UniversityHandler {
	return &UniversityHandler{svc: svc}
}

func (h *UniversityHandler) Register(c *gin.Context) {
	var req services.RegisterUniversityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UniversityHandler.Register", "invalid request body", err)
		return
	}

	id, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "University registered successfully", "universityId": id})
}

func (h *UniversityHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UniversityHandler.Login", "Email and password are required", err)
		return
	}

	auth, u, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": auth.Token, "role": auth.Role, "university": u})
}

func (h *UniversityHandler) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("university_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UniversityHandler) List(c *gin.Context) {
	p := utils.ParsePage(c.Query("page"), c.Query("per_page"))
	res, err := h.svc.List(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CatalogHandler serves one university-owned resource (campuses, departments, programs, faculty).
type CatalogHandler[T any] struct {
	svc    services.CatalogService[T]
	label  string
	plural string
}

func NewCatalogHandler[T any](svc services.CatalogService[T], label, plural string) *CatalogHandler[T] {
	return &CatalogHandler[T]{svc: svc, label: label, plural: plural}
}

func (h *CatalogHandler[T]) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, h.label+"Handler.Create", "invalid request body", err)
		return
	}

	id, err := h.svc.Create(c.Request.Context(), a, &doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": h.label + " created successfully", "id": id})
}

func (h *CatalogHandler[T]) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *CatalogHandler[T]) ListByUniversity(c *gin.Context) {
	rows, err := h.svc.ListByUniversity(c.Request.Context(), c.Param("university_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	c.JSON(http.StatusOK, gin.H{h.plural: rows})
}

func (h *CatalogHandler[T]) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, h.label+"Handler.Update", "invalid request body", err)
		return
	}

	if err := h.svc.Update(c.Request.Context(), a, c.Param("id"), &doc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.label + " updated successfully"})
}

func (h *CatalogHandler[T]) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.label + " deleted successfully"})
}
