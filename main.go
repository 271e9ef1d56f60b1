package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/pranavxdevops/membership-backend/config"
	"github.com/pranavxdevops/membership-backend/controllers"
	"github.com/pranavxdevops/membership-backend/middleware"
	"github.com/pranavxdevops/membership-backend/repositories"
	"github.com/pranavxdevops/membership-backend/routes"
	"github.com/pranavxdevops/membership-backend/services"
	"github.com/pranavxdevops/membership-backend/utils"
	"github.com/pranavxdevops/membership-backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := config.Load()

	// Initialize Firebase
	config.InitFirebase()

	// Connect to Redis
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Membership Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	requestRepo := repositories.NewRequestRepository(client)
	memberRepo := repositories.NewMemberRepository(client)
	adminRepo := repositories.NewAdminRepository(client)
	paymentRepo := repositories.NewPaymentRepository(client)

	// Initialize services
	mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	requestService := services.NewRequestService(requestRepo, memberRepo, mailer, cfg.AdminEmail)
	roleService := services.NewRoleService(adminRepo, config.GetRedisClient())
	searchService := services.NewTypesenseService(cfg.TypesenseURL, cfg.TypesenseAPIKey)
	paytabsService := services.NewPayTabsService(cfg.PayTabsBaseURL, cfg.PayTabsProfileID, cfg.PayTabsServerKey, cfg.CallbackBaseURL)

	if err := searchService.EnsureCollection(); err != nil {
		log.Printf("Warning: member search index unavailable: %v", err)
	}

	directoryURL := os.Getenv("DIRECTORY_URL")
	if directoryURL == "" {
		directoryURL = "http://localhost:8080"
	}

	// Initialize controllers
	requestController := controllers.NewRequestController(requestService, adminRepo, wsHub)
	memberController := controllers.NewMemberController(memberRepo, searchService, directoryURL)
	authController := controllers.NewAuthController(adminRepo)
	adminController := controllers.NewAdminController(adminRepo, roleService)
	paymentController := controllers.NewPaymentController(paymentRepo, memberRepo, paytabsService)

	// Register routes
	routes.RegisterRequestRoutes(e, requestController, cfg.APIKey)
	routes.RegisterMemberRoutes(e, memberController, roleService)
	routes.RegisterAdminRoutes(e, authController, adminController, roleService, wsHub)
	routes.RegisterPaymentRoutes(e, paymentController, roleService, cfg.APIKey)

	// Ensure uploads directory exists
	os.MkdirAll("uploads", 0755)
	os.MkdirAll("uploads/logos", 0755)

	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
