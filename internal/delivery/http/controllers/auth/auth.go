package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	RequestOTP(ctx context.Context, channel, destination, purpose string) error
	VerifySignup(ctx context.Context, channel, destination, code, name, role string) (accessToken, refreshToken string, err error)
	VerifyLogin(ctx context.Context, channel, destination, code string) (accessToken, refreshToken string, err error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	AuthService AuthService
	log         logger.Log
}

func NewAuthHandler(l logger.Log, auth AuthService) *AuthHandler {
	return &AuthHandler{
		AuthService: auth,
		log:         l,
	}
}

type otpRequest struct {
	Channel     string `json:"channel" binding:"required,oneof=email phone"`
	Destination string `json:"destination" binding:"required"`
	Purpose     string `json:"purpose" binding:"required,oneof=signup login"`
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var input otpRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.AuthService.RequestOTP(c.Request.Context(), input.Channel, input.Destination, input.Purpose)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserExists) || errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error handling otp request", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "code sent"})
}

type verifySignupRequest struct {
	Channel     string `json:"channel" binding:"required,oneof=email phone"`
	Destination string `json:"destination" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=student expert"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) VerifySignup(c *gin.Context) {
	var input verifySignupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, err := h.AuthService.VerifySignup(c.Request.Context(),
		input.Channel, input.Destination, input.Code, input.Name, input.Role)
	if err != nil {
		if isOTPError(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, app_errors.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error handling signup", err)
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

type verifyLoginRequest struct {
	Channel     string `json:"channel" binding:"required,oneof=email phone"`
	Destination string `json:"destination" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var input verifyLoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, err := h.AuthService.VerifyLogin(c.Request.Context(),
		input.Channel, input.Destination, input.Code)
	if err != nil {
		if isOTPError(err) || errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error handling login", err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

type tokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input tokenRefreshRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokenPair, err := h.AuthService.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) || errors.Is(err, app_errors.ErrTokenExpired) ||
			errors.Is(err, app_errors.ErrTokenNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  tokenPair.AccessToken.Raw,
		RefreshToken: tokenPair.RefreshToken.Raw,
	})
}

type meResponse struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Roles  []string `json:"roles"`
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.AuthService.User(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error retrieving user", err)
		return
	}

	c.JSON(http.StatusOK, meResponse{
		UserID: user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
		Roles:  user.Roles,
	})
}

func isOTPError(err error) bool {
	return errors.Is(err, app_errors.ErrOTPNotFound) ||
		errors.Is(err, app_errors.ErrOTPMismatch) ||
		errors.Is(err, app_errors.ErrOTPTooManyAttempts)
}
