package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load env vars from .env file directly
func init() {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist (e.g. in production),
		// but we should log it just in case.
		// However, mostly we want to rely on environment variables being set.
		// If we are in local dev, this helps.
		log.Println("No .env file found or error loading it, using system environment variables")
	}
}

// GetAllowedOrigins returns a slice of allowed origins from the environment variable.
// It defaults to localhost:3000 if not set.
func GetAllowedOrigins() []string {
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr == "" {
		return []string{"http://localhost:3000"}
	}

	// Split by comma and trim spaces
	parts := strings.Split(originsStr, ",")
	var origins []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// GetIntEnv reads an integer environment variable, falling back to def when
// unset or unparsable.
func GetIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// WorkerPoolNormalSize returns the configured worker-pool floor size, or 0 to
// let the pool derive it from GOMAXPROCS.
func WorkerPoolNormalSize() int {
	return GetIntEnv("COMPRESS_WORKER_NORMAL_SIZE", 0)
}

// WorkerPoolMaxSize returns the configured worker-pool ceiling size, or 0 to
// let the pool derive it from GOMAXPROCS.
func WorkerPoolMaxSize() int {
	return GetIntEnv("COMPRESS_WORKER_MAX_SIZE", 0)
}

// WorkerPoolMaxQueue returns the configured max pending-queue length.
func WorkerPoolMaxQueue() int {
	return GetIntEnv("COMPRESS_MAX_QUEUE", 100)
}
