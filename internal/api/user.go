package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/storage/postgres"
	"github.com/finergize/assistant-backend/internal/types"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Village           string `json:"village"`
	District          string `json:"district"`
	State             string `json:"state"`
	Pincode           string `json:"pincode"`
	AadhaarNumber     string `json:"aadhaarNumber"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"user"`
}

// LoginRequest carries the phone + Aadhaar credentials.
type LoginRequest struct {
	Phone         string `json:"phone"`
	AadhaarNumber string `json:"aadhaarNumber"`
}

// LoginResponse returns the session token and basic profile.
type LoginResponse struct {
	Token string         `json:"token"`
	User  types.UserInfo `json:"user"`
}

// PreferenceRequest updates the preferred display language.
type PreferenceRequest struct {
	PreferredLanguage types.Language `json:"preferredLanguage"`
}

// Register handles POST /api/users/register: it checks phone and Aadhaar
// uniqueness, creates the user and opens a zero-balance account.
func (s *Server) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Name == "" || req.Phone == "" || req.AadhaarNumber == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name, phone and aadhaarNumber are required"})
	}

	ctx := c.Request().Context()

	if existing, err := s.userRepo.GetByPhone(ctx, req.Phone); err != nil && !errors.Is(err, postgres.ErrNotFound) {
		s.logger.WithError(err).Error("registration lookup failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "registration failed"})
	} else if existing != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "User with this phone number already exists"})
	}

	if existing, err := s.userRepo.GetByAadhaar(ctx, req.AadhaarNumber); err != nil && !errors.Is(err, postgres.ErrNotFound) {
		s.logger.WithError(err).Error("registration lookup failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "registration failed"})
	} else if existing != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "This Aadhaar number is already registered"})
	}

	user := &types.User{
		Name:              req.Name,
		Phone:             req.Phone,
		Village:           req.Village,
		District:          req.District,
		State:             req.State,
		Pincode:           req.Pincode,
		AadhaarNumber:     req.AadhaarNumber,
		PreferredLanguage: types.ParseLanguage(req.PreferredLanguage),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.WithError(err).Error("failed to create user")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "This phone number or Aadhaar is already registered"})
	}

	account := &types.Account{
		UserID: user.ID,
		Name:   user.Name,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		s.logger.WithError(err).Error("failed to create account")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "registration failed"})
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":        user.ID,
		"phone":          user.Phone,
		"wallet_address": account.WalletAddress,
	}).Info("user registered")

	resp := RegisterResponse{Success: true, Message: "Registration successful"}
	resp.User.ID = user.ID.String()
	resp.User.Name = user.Name
	resp.User.Phone = user.Phone
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/users/login with phone + Aadhaar credentials.
func (s *Server) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	user, err := s.userRepo.GetByPhone(c.Request().Context(), req.Phone)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		}
		s.logger.WithError(err).Error("login lookup failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "login failed"})
	}
	if user.AadhaarNumber != req.AadhaarNumber {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	}

	token, err := s.authService.IssueToken(user.ID.String(), user.Name, user.Phone)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue token")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "login failed"})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User: types.UserInfo{
			Name:              user.Name,
			PreferredLanguage: user.PreferredLanguage,
		},
	})
}

// Me handles GET /api/users/me: the userInfo pair the chat widget needs.
func (s *Server) Me(c echo.Context) error {
	claims := GetClaims(c)

	user, err := s.userRepo.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		}
		s.logger.WithError(err).Error("failed to load user")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load user"})
	}

	return c.JSON(http.StatusOK, types.UserInfo{
		Name:              user.Name,
		PreferredLanguage: user.PreferredLanguage,
	})
}

// UpdatePreference handles PUT /api/users/preference.
func (s *Server) UpdatePreference(c echo.Context) error {
	var req PreferenceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if !req.PreferredLanguage.Valid() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported language"})
	}

	claims := GetClaims(c)
	if err := s.userRepo.UpdatePreferredLanguage(c.Request().Context(), claims.UserID, req.PreferredLanguage); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		}
		s.logger.WithError(err).Error("failed to update preference")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update preference"})
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
