// SideQuest API server
package main

import (
	"log"
	"os"
	"time"

	"sidequest/database"
	"sidequest/handlers"
	"sidequest/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Wire the progression engine and notifier
	handlers.InitPlayHandlers()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/guest", handlers.GuestLogin)

	// Hunt routes
	huntGroup := api.Group("/hunts")
	huntGroup.Get("/", handlers.GetHunts)
	huntGroup.Get("/:id", handlers.GetHunt)
	huntGroup.Get("/:id/leaderboard", handlers.GetHuntLeaderboard)
	huntGroup.Post("/", middleware.AuthMiddleware, middleware.RequireRole("creator", "admin"), handlers.CreateHunt)
	huntGroup.Post("/:id/join", middleware.AuthMiddleware, handlers.JoinHunt)
	huntGroup.Post("/:id/feedback", middleware.AuthMiddleware, handlers.SubmitFeedback)

	// Checkpoint authoring routes
	checkpointGroup := api.Group("/checkpoints")
	checkpointGroup.Use(middleware.AuthMiddleware, middleware.RequireRole("creator", "admin"))
	checkpointGroup.Post("/", handlers.CreateCheckpoint)
	checkpointGroup.Patch("/:id", handlers.UpdateCheckpoint)
	checkpointGroup.Delete("/:id", handlers.DeleteCheckpoint)

	// Badge routes
	badgeGroup := api.Group("/badges")
	badgeGroup.Get("/", handlers.GetBadges)
	badgeGroup.Get("/user/:userId", handlers.GetUserBadges)
	badgeGroup.Post("/", middleware.AuthMiddleware, middleware.RequireRole("admin"), handlers.CreateBadge)
	badgeGroup.Post("/grant", middleware.AuthMiddleware, middleware.RequireRole("admin"), handlers.GrantBadge)

	// Play routes (require authentication)
	playGroup := api.Group("/play")
	playGroup.Use(middleware.AuthMiddleware)
	playGroup.Get("/runs/:id", handlers.GetRun)
	playGroup.Get("/checkpoints/:id", handlers.GetPlayCheckpoint)
	playGroup.Post("/attempts", handlers.SubmitAttempt)

	// User routes (require authentication)
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetMe)
	userGroup.Put("/me", handlers.UpdateMe)
	userGroup.Get("/:id", handlers.GetUser)
	userGroup.Get("/:userId/badges", handlers.GetUserBadges)
	userGroup.Get("/:id/hunts", handlers.GetUserHunts)
	userGroup.Get("/:id/overview", handlers.GetUserOverview)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("📍 Geofence enforcement: %s", getEnv("GEOFENCE_ENFORCED", "true"))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
