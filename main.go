package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/config"
	"github.com/smartapp-edu/records-service/internal/handlers"
	"github.com/smartapp-edu/records-service/internal/persistence"
	"github.com/smartapp-edu/records-service/internal/services"
	"github.com/smartapp-edu/records-service/internal/sms"
	"github.com/smartapp-edu/records-service/internal/store"
	"github.com/smartapp-edu/records-service/internal/utils"
	"github.com/smartapp-edu/records-service/internal/validator"
	"github.com/smartapp-edu/records-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Select the persistence backend. The local file is always present; a
	// remote backend wraps it so remote failures degrade instead of
	// stopping the process.
	localAdapter := persistence.NewFileAdapter(cfg.DataFile)
	var adapter persistence.Adapter = localAdapter

	var db *gorm.DB
	var redisClient *redis.Client
	switch {
	case cfg.DatabaseURL != "":
		db, err = pkg.InitDatabase(cfg)
		if err != nil {
			logger.Warn("database unavailable, using local snapshot file", "error", err)
			break
		}
		sqlAdapter, aerr := persistence.NewSQLAdapter(db, "")
		if aerr != nil {
			logger.Warn("snapshot table unavailable, using local snapshot file", "error", aerr)
			break
		}
		adapter = persistence.NewFallbackAdapter(sqlAdapter, localAdapter, logger)
		logger.Info("using SQL snapshot store")
	case cfg.RedisURL != "":
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("redis unavailable, using local snapshot file", "error", err)
			break
		}
		redisAdapter := persistence.NewRedisAdapter(redisClient, "")
		adapter = persistence.NewFallbackAdapter(redisAdapter, localAdapter, logger)
		logger.Info("using redis snapshot store")
	}

	// SMS delivery for password reset codes.
	var sender sms.Sender
	if cfg.Twilio.Configured() {
		sender = sms.NewTwilioSender(cfg.Twilio)
	} else {
		sender = sms.NewConsoleSender(logger)
	}

	// Initialize services
	recordStore := store.New()
	flusher := persistence.NewFlusher(adapter, slogLogger)
	policy := auth.NewAssertedPolicy()
	v := validator.New()

	serviceManager := services.NewServiceManager(recordStore, adapter, flusher, policy, sender, slogLogger, v)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, policy, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
