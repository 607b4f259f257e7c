package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "sonar/docs"
	"sonar/logging"
	"sonar/scanner"
)

// Run initializes dependencies and starts the API server. Configuration
// comes from the environment, optionally seeded from a .env file:
//
//	REDIS_ADDR     redis host:port (default localhost:6379)
//	API_KEY        bearer token required on /api/v1 routes
//	LISTEN_ADDR    listen address (default :8080)
//	SERVICES_FILE  well-known port reference file (default well-known-ports.txt)
func Run() error {
	_ = godotenv.Load()
	logger := logging.Configure()

	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
	}

	store := NewRedisStore(redisClient)

	servicesFile := getenv("SERVICES_FILE", "well-known-ports.txt")
	table, err := scanner.LoadServices(servicesFile)
	if err != nil {
		return err
	}
	logger.Info("service registry loaded", "path", servicesFile, "entries", table.Len())
	directory := scanner.NewDirectory(table)

	if _, err := StartWorkers(store, directory, 4); err != nil {
		return err
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return fmt.Errorf("API_KEY must be set")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(apiKey, logger))
	v1.Use(RateLimitMiddleware(redisClient, 60, time.Minute, logger))

	server := NewServer(store)
	server.RegisterRoutes(v1)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	listenAddr := getenv("LISTEN_ADDR", ":8080")
	logger.Info("starting API server", "addr", listenAddr)
	return router.Run(listenAddr)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
