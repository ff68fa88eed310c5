package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"imagecompressor/internal/compress"
	"imagecompressor/internal/compress/pool"
	"imagecompressor/internal/config"
	"imagecompressor/internal/database"
	"imagecompressor/internal/logger"
	"imagecompressor/internal/observability"
	"imagecompressor/internal/router"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Get configuration from environment
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	port := getEnv("PORT", "3001")
	env := getEnv("NODE_ENV", "development")

	// Initialize logger
	logger.Init("imagecompressor", env, logger.ParseLevelFromEnv())

	// Initialize OpenTelemetry
	shutdownOTel, err := observability.InitOTel(context.Background(), "imagecompressor")
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenTelemetry: %v", err)
	} else {
		defer func() {
			if err := shutdownOTel(context.Background()); err != nil {
				log.Printf("Error shutting down OpenTelemetry: %v", err)
			}
		}()
		log.Println("✓ OpenTelemetry initialized")
	}

	// Set Gin mode
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.New(databaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✓ Connected to PostgreSQL")

	// Initialize libvips; Shutdown must run after every in-flight encode
	// has finished, so it's deferred before engine.Shutdown and therefore
	// runs after the pool has drained.
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 0, // 0 = let libvips size its own thread pool
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})
	defer vips.Shutdown()
	log.Printf("✓ libvips started, version %s", vips.Version)

	caps := compress.ProbeCapabilities()
	log.Printf("✓ codec capabilities: avif_encode=%v avif_decode=%v jxl_encode=%v simd=%v",
		caps.AvifEncode, caps.AvifDecode, caps.JxlEncode, caps.SIMD)

	engine := compress.NewEngine(
		pool.WithNormalSize(config.WorkerPoolNormalSize()),
		pool.WithMaxSize(config.WorkerPoolMaxSize()),
		pool.WithMaxQueue(config.WorkerPoolMaxQueue()),
	)
	defer engine.Shutdown()

	// Setup router with all handlers
	r := router.Setup(db, engine)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s", port)
		log.Printf("📍 Database: PostgreSQL")
		log.Printf("🌍 Environment: %s", env)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("📤 Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
