package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/cloudvault/cloudvault/internal/db"
	"github.com/cloudvault/cloudvault/internal/handlers"
	"github.com/cloudvault/cloudvault/internal/middleware"
	"github.com/cloudvault/cloudvault/internal/provider"
	"github.com/cloudvault/cloudvault/internal/storage"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	// Initialize Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Get MongoDB URI from environment
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017/cloudvault" // Default fallback
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	mongoDB := db.ConnectMongoDB(mongoURI, "cloudvault")
	minioClient := storage.InitMinio()

	sessionProvider := provider.NewMongoProvider(mongoDB, jwtSecret)
	authHandler := handlers.NewAuthHandler(sessionProvider)
	fileHandler := handlers.NewFileHandler(mongoDB, minioClient)

	// Auth Routes
	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// File Routes
	files := app.Group("/files", middleware.Auth(jwtSecret))
	files.Get("/", fileHandler.List)
	files.Post("/", fileHandler.Upload)
	files.Delete("/:name", fileHandler.Delete)
	files.Get("/:name/download", fileHandler.Download)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default port
	}

	// Start server
	log.Fatal(app.Listen(":" + port))
}
