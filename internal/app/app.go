package app

import (
	"database/sql"
	"fmt"
	"log"

	"crewdesk/internal/config"
	"crewdesk/internal/handlers"
	"crewdesk/internal/pdf"
	"crewdesk/internal/realtime"
	"crewdesk/internal/repositories"
	"crewdesk/internal/routes"
	"crewdesk/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "crewdesk/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to the database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close the database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	productRepo := repositories.NewProductRepository(db)
	attachmentRepo := repositories.NewAttachmentRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
	mailService := services.NewMailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	throttle := services.NewResendThrottle(
		services.NewMemoryAttemptStore(),
		cfg.OTP.ResendCooldown.Duration,
		cfg.OTP.MaxResends,
	)
	accountService := services.NewAccountService(
		userRepo,
		mailService,
		authService,
		throttle,
		cfg.OTP.Length,
		cfg.OTP.TTL.Duration,
		cfg.Auth.RequireVerifiedLogin,
	)

	chatHub := realtime.NewHub()
	chatService := services.NewChatService(conversationRepo, messageRepo, userRepo, chatHub)
	productService := services.NewProductService(productRepo)

	invoiceGen := pdf.NewInvoiceGenerator(cfg.Files.RootDir)
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.StaffChatID)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, invoiceGen, telegramService)

	attachmentService := services.NewAttachmentService(attachmentRepo, cfg.Files.RootDir)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(accountService)
	conversationHandler := handlers.NewConversationHandler(chatService)
	messageHandler := handlers.NewMessageHandler(chatService, chatHub)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)
	orderHandler := handlers.NewOrderHandler(orderService)
	productHandler := handlers.NewProductHandler(productService)
	emailHandler := handlers.NewEmailHandler(mailService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded files are served as-is
	router.Static("/uploads", cfg.Files.RootDir)

	routes.SetupRoutes(
		router,
		authService,
		authHandler,
		conversationHandler,
		messageHandler,
		attachmentHandler,
		orderHandler,
		productHandler,
		emailHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start the server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
