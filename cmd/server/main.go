package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/api"
	"github.com/finergize/assistant-backend/internal/cache/redis"
	"github.com/finergize/assistant-backend/internal/config"
	"github.com/finergize/assistant-backend/internal/gateway/assistant"
	"github.com/finergize/assistant-backend/internal/gateway/translate"
	"github.com/finergize/assistant-backend/internal/service"
	"github.com/finergize/assistant-backend/internal/service/chat"
	"github.com/finergize/assistant-backend/internal/storage/postgres"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	// Configure log format
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	logger.Info("starting assistant-backend server")

	// Connect to database
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis client
	redisClient, err := redis.New(cfg.Redis.URI)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()

	// Initialize gateways
	assistantClient := assistant.NewClient(cfg.Assistant.BaseURL, cfg.Assistant.Timeout)
	translator := translate.NewClient(cfg.Translate.APIKey, cfg.Translate.BaseURL, cfg.Translate.Timeout, logger)
	if cfg.Translate.APIKey == "" {
		logger.Warn("no translate API key configured, running English-only")
	}

	// Initialize services
	authService := service.NewAuthService(cfg.Server.JWTSecret)

	store := chat.NewStore(redisClient, cfg.Chat.StateTTL)
	// No platform speech synthesis server-side; clients vocalize from the
	// speech hint in each turn result.
	chatService := chat.NewService(store, translator, assistantClient, nil, logger, cfg.Chat.BotName)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db.Pool())
	accountRepo := postgres.NewAccountRepository(db.Pool())

	// Initialize API server
	server := api.NewServer(authService, chatService, userRepo, accountRepo, assistantClient, logger)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Add middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Info("request")
			return nil
		},
	}))

	// Health check endpoint (public)
	e.GET("/healthz", server.Health)

	// User routes
	users := e.Group("/api/users")
	users.POST("/register", server.Register)
	users.POST("/login", server.Login)
	users.GET("/me", server.Me, server.AuthMiddleware)
	users.PUT("/preference", server.UpdatePreference, server.AuthMiddleware)

	// Chat routes (work anonymously, personalized when a token is present)
	chatGroup := e.Group("/chat", server.OptionalAuthMiddleware)
	chatGroup.POST("/messages", server.SendMessage)
	chatGroup.GET("/messages", server.GetMessages)
	chatGroup.POST("/reset", server.ResetChat)
	chatGroup.PUT("/language", server.SetLanguage)
	chatGroup.PUT("/translation", server.SetTranslationVisible)
	chatGroup.GET("/help", server.HelpTopics)
	chatGroup.POST("/help", server.HelpTopic)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown error")
	}

	logger.Info("server stopped")
}
