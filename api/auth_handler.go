package api

import (
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		userService: service.NewUserService(),
	}
}

type registerRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=32"`
	Password     string `json:"password" binding:"required,min=8"`
	Email        string `json:"email" binding:"required,email"`
	Organization string `json:"organization" binding:"required"`
}

// Register creates a new organization and its first admin user
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Register(req.Username, req.Password, req.Email, req.Organization)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"id":           user.ID.Hex(),
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"organization": user.OrganizationID.Hex(),
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and returns a JWT token
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	token, user, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		utils.Error(c, utils.ErrCodePasswordWrong, "Invalid username or password")
		return
	}

	utils.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":           user.ID.Hex(),
			"username":     user.Username,
			"email":        user.Email,
			"role":         user.Role,
			"organization": user.OrganizationID.Hex(),
		},
	})
}

// RefreshToken mints a fresh token for a valid session
// POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		utils.Unauthorized(c, "Malformed authorization header")
		return
	}

	token, err := utils.RefreshToken(authHeader[7:])
	if err != nil {
		utils.Unauthorized(c, "Token is invalid or expired")
		return
	}

	utils.Success(c, gin.H{"token": token})
}

// GetProfile returns the authenticated user's profile
// GET /api/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetUserByID(currentUserID(c).Hex())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"id":           user.ID.Hex(),
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"organization": user.OrganizationID.Hex(),
		"lastLogin":    user.LastLogin,
		"createdAt":    user.CreatedAt,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword updates the authenticated user's password
// POST /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.ChangePassword(currentUserID(c).Hex(), req.OldPassword, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Password updated", nil)
}
