package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/utils"
)

const maxDocumentBytes = 10 << 20

type StudentHandler struct {
	svc             services.StudentService
	recommendations services.RecommendationService
}

func NewStudentHandler(svc services.StudentService, recommendations services.RecommendationService) *StudentHandler {
	return &StudentHandler{svc: svc, recommendations: recommendations}
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *StudentHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "StudentHandler.Signup", "All fields are required", err)
		return
	}

	id, err := h.svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Signup successful", "studentId": id})
}

func (h *StudentHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "StudentHandler.Login", "Email and password are required", err)
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// List backs both /get_students and /api/students.
func (h *StudentHandler) List(c *gin.Context) {
	p := utils.ParsePage(c.Query("page"), "")
	res, err := h.svc.List(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) ListRegistered(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	res, err := h.svc.ListRegistered(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) Profile(c *gin.Context) {
	res, err := h.svc.Profile(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ProfileForm is the profile page form. Absent fields stay untouched; list fields are comma separated.
type ProfileForm struct {
	StudentID         string  `form:"studentId" json:"studentId"`
	FullName          *string `form:"fullName" json:"fullName"`
	DOB               *string `form:"dob" json:"dob"`
	Gender            *string `form:"gender" json:"gender"`
	Nationality       *string `form:"nationality" json:"nationality"`
	Address           *string `form:"address" json:"address"`
	ContactNumber     *string `form:"contactNumber" json:"contactNumber"`
	AppliedUniversity *string `form:"appliedUniversity" json:"appliedUniversity"`
	AppliedCampus     *string `form:"appliedCampus" json:"appliedCampus"`
	AppliedProgram    *string `form:"appliedProgram" json:"appliedProgram"`
	MatricBoard       *string `form:"matricBoard" json:"matricBoard"`
	MatricYear        *string `form:"matricYear" json:"matricYear"`
	MatricMarks       *string `form:"matricMarks" json:"matricMarks"`
	MatricSubjects    *string `form:"matricSubjects" json:"matricSubjects"`
	InterBoard        *string `form:"interBoard" json:"interBoard"`
	InterYear         *string `form:"interYear" json:"interYear"`
	InterMarks        *string `form:"interMarks" json:"interMarks"`
	InterSubjects     *string `form:"interSubjects" json:"interSubjects"`
	BachelorUni       *string `form:"bachelorUni" json:"bachelorUni"`
	BachelorYear      *string `form:"bachelorYear" json:"bachelorYear"`
	BachelorMarks     *string `form:"bachelorMarks" json:"bachelorMarks"`
	BachelorMajor     *string `form:"bachelorMajor" json:"bachelorMajor"`
	MasterUni         *string `form:"masterUni" json:"masterUni"`
	MasterYear        *string `form:"masterYear" json:"masterYear"`
	MasterMarks       *string `form:"masterMarks" json:"masterMarks"`
	MasterMajor       *string `form:"masterMajor" json:"masterMajor"`
}

func splitOpt(v *string) []string {
	if v == nil {
		return nil
	}
	return services.SplitList(*v)
}

func (f ProfileForm) update() models.StudentProfileUpdate {
	return models.StudentProfileUpdate{
		FullName:          f.FullName,
		DOB:               f.DOB,
		Gender:            f.Gender,
		Nationality:       f.Nationality,
		Address:           f.Address,
		ContactNumber:     f.ContactNumber,
		AppliedUniversity: f.AppliedUniversity,
		AppliedCampus:     f.AppliedCampus,
		AppliedProgram:    f.AppliedProgram,
		MatricBoard:       f.MatricBoard,
		MatricYear:        f.MatricYear,
		MatricMarks:       f.MatricMarks,
		MatricSubjects:    splitOpt(f.MatricSubjects),
		InterBoard:        f.InterBoard,
		InterYear:         f.InterYear,
		InterMarks:        f.InterMarks,
		InterSubjects:     splitOpt(f.InterSubjects),
		BachelorUni:       f.BachelorUni,
		BachelorYear:      f.BachelorYear,
		BachelorMarks:     f.BachelorMarks,
		BachelorMajor:     splitOpt(f.BachelorMajor),
		MasterUni:         f.MasterUni,
		MasterYear:        f.MasterYear,
		MasterMarks:       f.MasterMarks,
		MasterMajor:       splitOpt(f.MasterMajor),
	}
}

func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	const op = "StudentHandler.UpdateProfile"

	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, op, "invalid request body", err)
		return
	}
	if form.StudentID == "" {
		badRequest(c, op, "Student ID is required", nil)
		return
	}
	if !requireSelf(c, op, form.StudentID) {
		return
	}

	modified, err := h.svc.UpdateProfile(c.Request.Context(), form.StudentID, form.update())
	if err != nil {
		writeError(c, err)
		return
	}
	if !modified {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No changes made to profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully"})
}

func (h *StudentHandler) UploadFile(c *gin.Context) {
	const op = "StudentHandler.UploadFile"

	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		badRequest(c, op, "No file uploaded", err)
		return
	}
	if fh.Size <= 0 || fh.Size > maxDocumentBytes {
		badRequest(c, op, "file too large (max 10MB)", nil)
		return
	}

	studentID := c.PostForm("studentId")
	if studentID == "" || c.PostForm("fileType") == "" {
		badRequest(c, op, "Student ID and file type are required", nil)
		return
	}
	if !requireSelf(c, op, studentID) {
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer f.Close()

	path, err := h.svc.UploadDocument(c.Request.Context(), studentID, c.PostForm("fileType"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File uploaded successfully", "path": path})
}

func (h *StudentHandler) SaveRecommendation(c *gin.Context) {
	const op = "StudentHandler.SaveRecommendation"

	var req services.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, op, "invalid request body", err)
		return
	}
	if req.StudentID != "" && !requireSelf(c, op, req.StudentID) {
		return
	}

	rec, err := h.recommendations.Save(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": rec.AIRecommendation})
}

func (h *StudentHandler) GetRecommendation(c *gin.Context) {
	rec, err := h.recommendations.Get(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendation": rec})
}
