// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-tube-api/config"
	"go-tube-api/db"
	"go-tube-api/handler"
	"go-tube-api/logger"
	"go-tube-api/repository"
	"go-tube-api/router"
	"go-tube-api/service"
	"go-tube-api/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	media, err := storage.NewS3MediaStorage()
	if err != nil {
		logger.Log.Fatalf("Error creating media storage client: %v", err)
	}

	r := buildRouter(database, redisClient, media)

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// buildRouter wires repositories, services, and handlers together.
func buildRouter(database *sql.DB, redisClient *redis.Client, media storage.MediaStorage) http.Handler {
	userRepo := repository.NewUserRepository(database)
	channelRepo := repository.NewChannelRepository(database)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, media, redisClient, authService)
	channelService := service.NewChannelService(channelRepo, redisClient)

	userHandler := handler.NewUserHandler(userService, authService)
	channelHandler := handler.NewChannelHandler(channelService)
	authMw := handler.NewAuthMiddleware(authService, userRepo)

	return router.NewRouter(userHandler, channelHandler, authMw)
}
