package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	model "live-auction-api/internal/models"
	"live-auction-api/services/helpers"
	"live-auction-api/utils"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, displayName string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		helpers.HandleServiceError(c, "RegisterHandler", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.AuthResponse{
		UserID:      user.UserID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Token:       token,
	}, "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{"user_id": user.UserID})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "LoginHandler", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.AuthResponse{
		UserID:      user.UserID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Token:       token,
	}, "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{"user_id": user.UserID})
}

// ProfileHandler handles GET /api/auth/me
func (h *AuthHandler) ProfileHandler(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "ProfileHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "profile retrieved successfully")
}

// UpdateFCMTokenHandler handles POST /api/auth/fcm-token
func (h *AuthHandler) UpdateFCMTokenHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req helpers.UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateFCMTokenHandler", err)
		return
	}

	if err := h.service.UpdateFCMToken(c.Request.Context(), userID, req.FCMToken); err != nil {
		helpers.HandleServiceError(c, "UpdateFCMTokenHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "FCM token updated successfully")
	helpers.LogSuccess("UpdateFCMTokenHandler", "FCM token updated", map[string]any{"user_id": userID})
}
