package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/finergize/assistant-backend/internal/service/chat"
	"github.com/finergize/assistant-backend/internal/types"
)

// SendMessageRequest is the request body for one chat turn.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// ResetRequest optionally overrides the greeting installed on reset.
type ResetRequest struct {
	Greeting string `json:"greeting,omitempty"`
}

// LanguageRequest switches the session display language.
type LanguageRequest struct {
	Language types.Language `json:"language"`
}

// TranslationRequest toggles secondary-language display.
type TranslationRequest struct {
	Visible bool `json:"visible"`
}

// HelpTopicRequest asks for a canned onboarding answer.
type HelpTopicRequest struct {
	Topic string `json:"topic"`
}

// HelpTopicsResponse lists the available canned questions.
type HelpTopicsResponse struct {
	Topics []string `json:"topics"`
}

// SendMessage handles POST /chat/messages: one complete conversation turn.
func (s *Server) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	sessionID := GetSessionID(c)
	result, err := s.chatService.SubmitTurn(c.Request().Context(), sessionID, req.Message, GetUserInfo(c))
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message is required"})
		case errors.Is(err, chat.ErrTurnInFlight):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "a turn is already in progress"})
		default:
			s.logger.WithError(err).Error("failed to process turn")
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to process message"})
		}
	}

	return c.JSON(http.StatusOK, result)
}

// GetMessages handles GET /chat/messages: session restore. A first-time
// session is initialized with a greeting.
func (s *Server) GetMessages(c echo.Context) error {
	sessionID := GetSessionID(c)
	state, err := s.chatService.History(c.Request().Context(), sessionID, GetUserInfo(c))
	if err != nil {
		s.logger.WithError(err).Error("failed to load history")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load history"})
	}
	return c.JSON(http.StatusOK, state)
}

// ResetChat handles POST /chat/reset: clear history back to a greeting.
func (s *Server) ResetChat(c echo.Context) error {
	var req ResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	sessionID := GetSessionID(c)
	state, err := s.chatService.Reset(c.Request().Context(), sessionID, req.Greeting, GetUserInfo(c))
	if err != nil {
		s.logger.WithError(err).Error("failed to reset chat")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to reset chat"})
	}
	return c.JSON(http.StatusOK, state)
}

// SetLanguage handles PUT /chat/language.
func (s *Server) SetLanguage(c echo.Context) error {
	var req LanguageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if !req.Language.Valid() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported language"})
	}

	sessionID := GetSessionID(c)
	state, err := s.chatService.SetLanguage(c.Request().Context(), sessionID, req.Language)
	if err != nil {
		s.logger.WithError(err).Error("failed to set language")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to set language"})
	}
	return c.JSON(http.StatusOK, state)
}

// SetTranslationVisible handles PUT /chat/translation.
func (s *Server) SetTranslationVisible(c echo.Context) error {
	var req TranslationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	sessionID := GetSessionID(c)
	state, err := s.chatService.SetTranslationVisible(c.Request().Context(), sessionID, req.Visible)
	if err != nil {
		s.logger.WithError(err).Error("failed to toggle translation")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to toggle translation"})
	}
	return c.JSON(http.StatusOK, state)
}

// HelpTopics handles GET /chat/help.
func (s *Server) HelpTopics(c echo.Context) error {
	return c.JSON(http.StatusOK, HelpTopicsResponse{Topics: chat.HelpTopics()})
}

// HelpTopic handles POST /chat/help: a canned answer recorded as a turn.
func (s *Server) HelpTopic(c echo.Context) error {
	var req HelpTopicRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Topic == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "topic is required"})
	}

	sessionID := GetSessionID(c)
	result, err := s.chatService.HelpTopic(c.Request().Context(), sessionID, req.Topic, GetUserInfo(c))
	if err != nil {
		if errors.Is(err, chat.ErrTurnInFlight) {
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "a turn is already in progress"})
		}
		s.logger.WithError(err).Error("failed to answer help topic")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to answer help topic"})
	}
	return c.JSON(http.StatusOK, result)
}

// Health handles GET /healthz, including assistant API reachability.
func (s *Server) Health(c echo.Context) error {
	status := map[string]string{"status": "ok", "assistant": "ok"}
	if !s.assistant.Health(c.Request().Context()) {
		status["assistant"] = "unreachable"
	}
	return c.JSON(http.StatusOK, status)
}
