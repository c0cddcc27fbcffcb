package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/finergize/assistant-backend/internal/service"
	"github.com/finergize/assistant-backend/internal/types"
)

// SessionHeader carries the chat session identifier. The server mints one
// for first-time clients and echoes it back on every chat response.
const SessionHeader = "X-Session-ID"

// AuthMiddleware validates session tokens and stores the claims in context.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := s.bearerClaims(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or missing token"})
		}
		c.Set("claims", claims)
		return next(c)
	}
}

// OptionalAuthMiddleware extracts claims when a valid token is present but
// lets anonymous requests through. The chat widget works without an account.
func (s *Server) OptionalAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, ok := s.bearerClaims(c); ok {
			c.Set("claims", claims)
		}
		return next(c)
	}
}

func (s *Server) bearerClaims(c echo.Context) (*service.Claims, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	claims, err := s.authService.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetClaims extracts session claims from the echo context, nil if anonymous.
func GetClaims(c echo.Context) *service.Claims {
	claims, _ := c.Get("claims").(*service.Claims)
	return claims
}

// GetUserInfo builds the assistant personalization payload from the session
// claims, nil for anonymous sessions.
func GetUserInfo(c echo.Context) *types.UserInfo {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	return &types.UserInfo{Name: claims.Name}
}

// GetSessionID returns the chat session ID from the request header, minting
// a fresh one when absent. The ID is always echoed back in the response.
func GetSessionID(c echo.Context) string {
	id := c.Request().Header.Get(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Response().Header().Set(SessionHeader, id)
	return id
}
