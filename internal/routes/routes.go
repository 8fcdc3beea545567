package routes

import (
	"github.com/gin-gonic/gin"

	"crewdesk/internal/authz"
	"crewdesk/internal/handlers"
	"crewdesk/internal/middleware"
	"crewdesk/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	auth *services.AuthService,
	authHandler *handlers.AuthHandler,
	conversationHandler *handlers.ConversationHandler,
	messageHandler *handlers.MessageHandler,
	attachmentHandler *handlers.AttachmentHandler,
	orderHandler *handlers.OrderHandler,
	productHandler *handlers.ProductHandler,
	emailHandler *handlers.EmailHandler,
) *gin.Engine {

	// ---- public, behind an IP rate limit
	authLimiter := middleware.NewAuthLimiter(5)
	public := r.Group("/api/auth", middleware.RateLimit(authLimiter))
	{
		public.POST("/signup", authHandler.Signup)
		public.POST("/verify-otp", authHandler.VerifyOTP)
		public.POST("/resend-otp", authHandler.ResendOTP)
		public.POST("/login", authHandler.Login)

		// legacy route names kept for older clients
		public.POST("/verify-signup", authHandler.VerifyOTP)
		public.POST("/resend-signup-otp", authHandler.ResendOTP)
	}

	// ---- protected
	api := r.Group("/api", middleware.AuthMiddleware(auth))

	profile := api.Group("/auth")
	{
		profile.GET("/profile", authHandler.GetProfile)
		profile.PUT("/profile", authHandler.UpdateProfile)
	}

	conversations := api.Group("/conversations")
	{
		conversations.POST("", conversationHandler.Create)
		conversations.GET("", conversationHandler.List)
	}

	messages := api.Group("/messages")
	{
		messages.POST("", messageHandler.Send)
		messages.GET("/conversation/:id", messageHandler.ListForConversation)
		messages.GET("/conversation/:id/ws", messageHandler.Stream)
	}

	attachments := api.Group("/attachments")
	{
		attachments.POST("", attachmentHandler.Upload)
		attachments.GET("", attachmentHandler.List)
		attachments.GET("/:id/file", attachmentHandler.Download)
		attachments.DELETE("/:id", attachmentHandler.Delete)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.GET("/:id/invoice", orderHandler.Invoice)
		orders.DELETE("/:id", orderHandler.Delete)

		// status changes are an accounting concern
		orders.POST("/:id/status",
			middleware.RequireRoles(authz.RoleAccounting, authz.RoleProjectManager, authz.RoleAdmin),
			orderHandler.UpdateStatus,
		)
	}

	products := api.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)

		write := products.Group("", middleware.RequireMinLevel(authz.Level(authz.RoleProjectManager)))
		{
			write.POST("", productHandler.Create)
			write.PUT("/:id", productHandler.Update)
			write.DELETE("/:id", productHandler.Delete)
		}
	}

	email := api.Group("/email", middleware.RequireRoles(authz.RoleHR, authz.RoleProjectManager, authz.RoleAdmin))
	{
		email.POST("/send", emailHandler.Send)
	}

	return r
}
