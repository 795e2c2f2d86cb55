package handlers

import (
	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/internal/middleware"
	"github.com/formpulse/backend/internal/services"
	"github.com/formpulse/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, jwtCfg),
	}
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetCurrentUser returns the authenticated user's profile
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserID)
	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, user)
}

// ChangePassword updates the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := c.GetUint(middleware.ContextUserID)
	if err := h.authService.ChangePassword(userID, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "password changed"})
}

// EnsureAdmin seeds the default admin account on startup
func (h *AuthHandler) EnsureAdmin() error {
	return h.authService.CreateAdminIfNotExists()
}
