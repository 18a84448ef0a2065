package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/utils"
)

const (
	maxChatbotFileBytes = 16 << 20
	docxMimeType        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ChatbotAdminHandler manages the chatbot's reference data: questions, material and files.
type ChatbotAdminHandler struct {
	svc services.ReferenceService
}

func NewChatbotAdminHandler(svc services.ReferenceService) *ChatbotAdminHandler {
	return &ChatbotAdminHandler{svc: svc}
}

func (h *ChatbotAdminHandler) ListQuestions(c *gin.Context) {
	rows, err := h.svc.ListQuestions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ChatbotAdminHandler) AddQuestion(c *gin.Context) {
	var req services.QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ChatbotAdminHandler.AddQuestion", "invalid request body", err)
		return
	}

	q, err := h.svc.AddQuestion(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *ChatbotAdminHandler) UpdateQuestion(c *gin.Context) {
	var req services.QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ChatbotAdminHandler.UpdateQuestion", "invalid request body", err)
		return
	}

	if err := h.svc.UpdateQuestion(c.Request.Context(), c.Param("id"), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question updated successfully"})
}

func (h *ChatbotAdminHandler) DeleteQuestion(c *gin.Context) {
	if err := h.svc.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

type ReorderRequest struct {
	QuestionIDs []string `json:"questionIds"`
}

func (h *ChatbotAdminHandler) ReorderQuestions(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ChatbotAdminHandler.ReorderQuestions", "invalid request body", err)
		return
	}

	if err := h.svc.ReorderQuestions(c.Request.Context(), req.QuestionIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Questions reordered successfully"})
}

func (h *ChatbotAdminHandler) GetMaterial(c *gin.Context) {
	m, err := h.svc.GetMaterial(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type MaterialRequest struct {
	Content string `json:"content"`
}

func (h *ChatbotAdminHandler) PutMaterial(c *gin.Context) {
	var req MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ChatbotAdminHandler.PutMaterial", "invalid request body", err)
		return
	}

	if err := h.svc.PutMaterial(c.Request.Context(), req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "General material updated successfully"})
}

func (h *ChatbotAdminHandler) UploadFile(c *gin.Context) {
	const op = "ChatbotAdminHandler.UploadFile"

	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		badRequest(c, op, "No file uploaded", err)
		return
	}
	if fh.Size > maxChatbotFileBytes {
		badRequest(c, op, "file too large (max 16MB)", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxChatbotFileBytes))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	file, err := h.svc.UploadFile(c.Request.Context(), fh.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *ChatbotAdminHandler) ListFiles(c *gin.Context) {
	rows, err := h.svc.ListFiles(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ChatbotAdminHandler) DownloadFile(c *gin.Context) {
	f, err := h.svc.GetFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(f.Filename))
	c.Data(http.StatusOK, docxMimeType, f.Data)
}

func (h *ChatbotAdminHandler) DeleteFile(c *gin.Context) {
	if err := h.svc.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
