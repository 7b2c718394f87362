package api

import (
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler() *UserHandler {
	return &UserHandler{
		userService: service.NewUserService(),
	}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required,oneof=admin analyst viewer"`
}

// CreateUser adds a user to the caller's organization
// POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	orgID, err := primitive.ObjectIDFromHex(currentOrgID(c))
	if err != nil {
		utils.BadRequest(c, "invalid organization id")
		return
	}

	user, err := h.userService.CreateUser(orgID, req.Username, req.Password, req.Email, req.Role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"id":       user.ID.Hex(),
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// ListUsers lists the members of the caller's organization
// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(currentOrgID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var userList []gin.H
	for _, user := range users {
		userList = append(userList, gin.H{
			"id":        user.ID.Hex(),
			"username":  user.Username,
			"email":     user.Email,
			"role":      user.Role,
			"status":    user.Status,
			"lastLogin": user.LastLogin,
			"createdAt": user.CreatedAt,
		})
	}

	utils.Success(c, userList)
}

// GetUser gets a user by ID
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Users are only visible inside their own organization
	if user.OrganizationID.Hex() != currentOrgID(c) {
		utils.NotFound(c, "user not found")
		return
	}

	utils.Success(c, gin.H{
		"id":        user.ID.Hex(),
		"username":  user.Username,
		"email":     user.Email,
		"role":      user.Role,
		"status":    user.Status,
		"lastLogin": user.LastLogin,
		"createdAt": user.CreatedAt,
	})
}
