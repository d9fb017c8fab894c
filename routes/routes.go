package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentalq/mentalq-backend/controllers"
	"github.com/mentalq/mentalq-backend/middleware"
	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	// Auth Routes
	api.POST("/register", controllers.RegisterUser)
	api.GET("/verify-email/:token", controllers.VerifyEmail)
	api.POST("/login", controllers.LoginUser)
	api.POST("/logout", controllers.LogoutUser)
	api.POST("/google-login", controllers.GoogleLogin)
	api.POST("/register-psikologi", controllers.RegisterPsikologi)

	// Password Reset Routes
	api.POST("/request-reset", controllers.RequestPasswordReset)
	api.POST("/verify-otp", controllers.VerifyOTP)
	api.POST("/reset-password", controllers.ResetPassword)

	// Trang tĩnh
	api.GET("/terms-of-service", controllers.TermsOfService)
	api.GET("/privacy-policy", controllers.PrivacyPolicy)

	// User Routes
	api.PUT("/users/update", middleware.AuthenticateToken(), controllers.UpdateUser)
	api.GET("/user", middleware.AuthenticateToken(), controllers.GetUser)
	api.GET("/user/:id", controllers.GetUserById)
	api.PUT("/users/delete", middleware.AuthenticateToken(), controllers.DeleteUser)

	// Danh sách user cho chuyên gia tâm lý chọn người để chat
	api.GET("/users", middleware.RequireRoles(string(models.RolePsychologist)), controllers.GetAllUsers)

	// Psikologi Routes
	api.GET("/psychologist", controllers.GetAllPsychologists)
	api.GET("/psychologist/:id", controllers.GetPsychologistById)

	// Note Routes
	api.GET("/notes", middleware.AuthenticateToken(), controllers.GetAllNotes)
	api.GET("/notes/:id", middleware.AuthenticateToken(), controllers.GetNoteById)
	api.POST("/notes", middleware.AuthenticateToken(), controllers.CreateNote)
	api.PUT("/notes/:id", middleware.AuthenticateToken(), controllers.UpdateNote)
	api.PUT("/notes/delete/:id", middleware.AuthenticateToken(), controllers.DeleteNote)

	// Analysis Routes
	api.GET("/analysis", middleware.AuthenticateToken(), controllers.GetAnalysis)

	// Chat Routes
	api.POST("/chats", middleware.AuthenticateToken(), controllers.SendMessage)
	api.GET("/chats", middleware.AuthenticateToken(), controllers.GetRecentChats)
	api.GET("/chats/:other_user_id", middleware.AuthenticateToken(), controllers.GetChatsHistory)

	// Midtrans Routes
	api.POST("/transaction", middleware.AuthenticateToken(), controllers.CreateTransaction)
	api.GET("/transaction/:id", middleware.AuthenticateToken(), controllers.GetStatusTransaction)
	api.POST("/transaction/:id/cancel", middleware.AuthenticateToken(), controllers.CancelTransaction)

	// WebSocket chat realtime
	r.GET("/ws/chat", ws.HandleChatWebSocket)

	return r
}
