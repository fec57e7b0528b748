package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/cyberone/financial-mesh/internal/api"
	"github.com/cyberone/financial-mesh/internal/config"
	"github.com/cyberone/financial-mesh/internal/db"
	"github.com/cyberone/financial-mesh/internal/queue"
	"github.com/cyberone/financial-mesh/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Connecting to Postgres
	logger.Info("connecting to PostgreSQL...")
	postgres, err := db.NewPostgres(cfg.Postgres.URI)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgres.Close()

	// Create schema
	if err := postgres.InitSchema(ctx); err != nil {
		logger.Fatal("failed to create schema", zap.Error(err))
	}

	// Connect to MongoDB
	logger.Info("connecting to MongoDB...")
	mongodb, err := db.NewMongoDB(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongodb.Close(ctx)

	// Connect to RabbitMQ
	logger.Info("connecting to RabbitMQ...")
	rabbitmq, err := queue.NewRabbitMQ(cfg.RabbitMQ.URI)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbitmq.Close()

	// Redis backs the login rate limiter; empty addr disables it
	var redis radix.Client
	if cfg.Redis.Addr != "" {
		logger.Info("connecting to Redis...", zap.String("addr", cfg.Redis.Addr))
		redis, err = radix.NewPool("tcp", cfg.Redis.Addr, 10)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
	}

	// Create services
	transferService := service.NewTransferService(postgres, mongodb, mongodb, rabbitmq, logger)
	authService := service.NewAuthService(postgres, mongodb, rabbitmq, logger,
		cfg.Commission.Username, cfg.Commission.Code)
	adminService := service.NewAdminService(postgres, mongodb, mongodb, mongodb,
		transferService, rabbitmq, logger, cfg.Commission.SecondaryPassword)
	messageService := service.NewMessageService(mongodb, postgres, logger)

	// Create router and set up routes
	limiter := api.NewRateLimiter(redis, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindowSeconds)
	handler := api.NewHandler(authService, transferService, adminService, messageService,
		limiter, cfg.JWT.Secret, time.Duration(cfg.JWT.TTLMinutes)*time.Minute)

	router := mux.NewRouter()
	api.SetupRoutes(router, handler)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server shut down successfully")
}
