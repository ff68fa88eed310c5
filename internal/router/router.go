package router

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"imagecompressor/internal/compress"
	"imagecompressor/internal/compressjob"
	"imagecompressor/internal/config"
	"imagecompressor/internal/database"
	"imagecompressor/internal/handlers"
	"imagecompressor/internal/middleware"
	"imagecompressor/internal/repositories"
	"imagecompressor/internal/storage"
)

// Setup creates and configures the Gin router. engine is the process-wide
// compression engine (shared worker pool); callers construct it once at
// startup so every request dispatches onto the same pool.
func Setup(db *database.DB, engine *compress.Engine) *gin.Engine {
	userRepo := repositories.NewUserRepository(db)
	authHandler := handlers.NewAuthHandler(userRepo)

	compressRepo := repositories.NewCompressionRepository(db)

	var compressHandler *handlers.CompressHandler
	r2Client, err := storage.NewR2Client()
	if err != nil {
		log.Printf("Warning: R2 storage not configured: %v", err)
	} else {
		jobService := compressjob.NewService(engine, r2Client, compressRepo)
		compressHandler = handlers.NewCompressHandler(r2Client, jobService)
	}

	router := setupBaseRouter()

	router.GET("/health", healthCheck(db))

	router.GET("/api/me", handlers.AuthMiddleware(userRepo), authHandler.GetMe)

	v1 := router.Group("/api/v1")
	{
		if compressHandler != nil {
			compressRoutes := v1.Group("/compress")
			compressRoutes.Use(handlers.AuthMiddleware(userRepo))
			{
				compressRoutes.POST("/presign", compressHandler.GetPresignedURL)
				compressRoutes.POST("", compressHandler.Submit)
				compressRoutes.GET("/:id", compressHandler.GetStatus)
				compressRoutes.POST("/:id/resubmit", compressHandler.Resubmit)
			}
		}
	}

	router.GET("/api", apiDocumentation())

	return router
}

func setupBaseRouter() *gin.Engine {
	router := gin.New()

	router.Use(otelgin.Middleware("imagecompressor"))
	router.Use(middleware.Observability())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit())

	// In production, set this to the specific IP ranges of your load
	// balancers or reverse proxies. nil means no proxy headers are trusted.
	router.SetTrustedProxies(nil)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.GetAllowedOrigins()
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Authorization",
		"Accept",
		"User-Agent",
		"Cache-Control",
		"Pragma",
		"X-Session-ID",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	return router
}

func healthCheck(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"database":  "postgresql",
				"timestamp": time.Now().Unix(),
			})
			return
		}

		caps := compress.ProbeCapabilities()
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"version":      "1.0",
			"database":     "postgresql",
			"capabilities": caps,
			"timestamp":    time.Now().Unix(),
		})
	}
}

func apiDocumentation() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "imagecompressor",
			"version":     "1.0",
			"description": "Client-side image compression engine API",
			"endpoints": map[string]interface{}{
				"health": "GET /health",
				"compress": map[string]string{
					"presign":  "POST /api/v1/compress/presign",
					"submit":   "POST /api/v1/compress",
					"status":   "GET /api/v1/compress/:id",
					"resubmit": "POST /api/v1/compress/:id/resubmit",
				},
			},
		})
	}
}
