package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/api/handlers"
	"github.com/yoockh/admission/internal/api/middleware"
	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/services"
)

type Deps struct {
	Tokens services.TokenIssuer

	Chat         *handlers.ChatHandler
	Students     *handlers.StudentHandler
	Universities *handlers.UniversityHandler
	Campuses     *handlers.CatalogHandler[models.Campus]
	Departments  *handlers.CatalogHandler[models.Department]
	Programs     *handlers.CatalogHandler[models.Program]
	Faculty      *handlers.CatalogHandler[models.Faculty]
	Admins       *handlers.AdminHandler
	Chatbot      *handlers.ChatbotAdminHandler
	Recaptcha    *handlers.RecaptchaHandler
}

const (
	student    = models.RoleStudent
	university = models.RoleUniversity
	admin      = models.RoleAdmin
)

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := middleware.JWTAuth(d.Tokens)

	// Chat
	r.POST("/send_message", d.Chat.SendMessage)
	r.POST("/chat/session", d.Chat.NewSession)
	r.GET("/chat/session/:session_id", d.Chat.GetSession)
	r.GET("/chat/session/:session_id/history", d.Chat.History)
	r.DELETE("/chat/session/:session_id", d.Chat.EndSession)
	r.POST("/chat/voice", d.Chat.Voice)
	r.GET("/ws/chat", d.Chat.ChatWS)

	api := r.Group("/api")
	api.POST("/verify-recaptcha", d.Recaptcha.Verify)

	// Students
	api.POST("/students/signup", d.Students.Signup)
	api.POST("/students/login", d.Students.Login)
	api.GET("/students/profile/:student_id", d.Students.Profile)
	api.GET("/students/getRecommendation/:student_id", d.Students.GetRecommendation)

	staff := api.Group("", auth, middleware.RequireRole(admin, university))
	staff.GET("/students", d.Students.List)
	staff.GET("/registered-students", d.Students.ListRegistered)
	r.GET("/get_students", auth, middleware.RequireRole(admin, university), d.Students.List)

	self := api.Group("/students", auth, middleware.RequireRole(student, admin))
	self.POST("/updateProfile", d.Students.UpdateProfile)
	self.POST("/uploadFile", d.Students.UploadFile)
	self.POST("/saveRecommendation", d.Students.SaveRecommendation)

	// Universities
	api.POST("/universities/register", d.Universities.Register)
	api.POST("/universities/login", d.Universities.Login)
	api.GET("/universities", d.Universities.List)
	api.GET("/universities/:university_id", d.Universities.Get)
	api.GET("/universities/:university_id/campuses", d.Campuses.ListByUniversity)
	api.GET("/universities/:university_id/departments", d.Departments.ListByUniversity)
	api.GET("/universities/:university_id/programs", d.Programs.ListByUniversity)
	api.GET("/universities/:university_id/faculty", d.Faculty.ListByUniversity)

	unis := api.Group("/universities")
	owners := api.Group("/universities", auth, middleware.RequireRole(university, admin))
	catalog(unis, owners, "campuses", d.Campuses)
	catalog(unis, owners, "departments", d.Departments)
	catalog(unis, owners, "programs", d.Programs)
	catalog(unis, owners, "faculty", d.Faculty)

	// Admins
	api.POST("/admins/login", d.Admins.Login)

	admins := api.Group("", auth, middleware.RequireAdmin())
	admins.GET("/superadmin/admins", d.Admins.ListAdmins)
	admins.POST("/superadmin/admins", d.Admins.CreateAdmin)
	admins.GET("/superadmin/admins/:id", d.Admins.GetAdmin)
	admins.PUT("/superadmin/admins/:id", d.Admins.UpdateAdmin)
	admins.DELETE("/superadmin/admins/:id", d.Admins.DeleteAdmin)

	admins.GET("/subadmins", d.Admins.ListSubAdmins)
	admins.POST("/subadmins", d.Admins.CreateSubAdmin)
	admins.GET("/subadmins/:id", d.Admins.GetSubAdmin)
	admins.PUT("/subadmins/:id", d.Admins.UpdateSubAdmin)
	admins.DELETE("/subadmins/:id", d.Admins.DeleteSubAdmin)

	admins.GET("/dashboard/counts", d.Admins.DashboardCounts)
	staff.GET("/dashboard/university-counts", d.Admins.UniversityCounts)

	// Chatbot reference data
	api.GET("/chatbot/interview-questions", d.Chatbot.ListQuestions)
	api.GET("/chatbot/general-material", d.Chatbot.GetMaterial)
	api.GET("/chatbot/files", d.Chatbot.ListFiles)
	api.GET("/chatbot/files/:id", d.Chatbot.DownloadFile)

	admins.POST("/chatbot/interview-questions", d.Chatbot.AddQuestion)
	admins.POST("/chatbot/interview-questions/reorder", d.Chatbot.ReorderQuestions)
	admins.PUT("/chatbot/interview-questions/:id", d.Chatbot.UpdateQuestion)
	admins.DELETE("/chatbot/interview-questions/:id", d.Chatbot.DeleteQuestion)
	admins.PUT("/chatbot/general-material", d.Chatbot.PutMaterial)
	admins.POST("/chatbot/files", d.Chatbot.UploadFile)
	admins.DELETE("/chatbot/files/:id", d.Chatbot.DeleteFile)
	admins.GET("/chatbot/logs", d.Chat.RecentTurns)
	admins.GET("/chatbot/logs/:id", d.Chat.Turn)
}

// catalogRoutes is the subset of CatalogHandler the router needs, independent of T.
type catalogRoutes interface {
	Create(*gin.Context)
	Get(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

func catalog(public, owners *gin.RouterGroup, path string, h catalogRoutes) {
	public.GET("/"+path+"/:id", h.Get)
	owners.POST("/"+path, h.Create)
	owners.PUT("/"+path+"/:id", h.Update)
	owners.DELETE("/"+path+"/:id", h.Delete)
}
