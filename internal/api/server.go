package api

import (
	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/gateway/assistant"
	"github.com/finergize/assistant-backend/internal/service"
	"github.com/finergize/assistant-backend/internal/service/chat"
	"github.com/finergize/assistant-backend/internal/storage/postgres"
)

// Server holds API dependencies.
type Server struct {
	authService *service.AuthService
	chatService *chat.Service
	userRepo    *postgres.UserRepository
	accountRepo *postgres.AccountRepository
	assistant   *assistant.Client
	logger      *logrus.Logger
}

// NewServer creates a new API server.
func NewServer(
	authService *service.AuthService,
	chatService *chat.Service,
	userRepo *postgres.UserRepository,
	accountRepo *postgres.AccountRepository,
	assistantClient *assistant.Client,
	logger *logrus.Logger,
) *Server {
	return &Server{
		authService: authService,
		chatService: chatService,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		assistant:   assistantClient,
		logger:      logger,
	}
}
