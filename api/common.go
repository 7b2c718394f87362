package api

import (
	"errors"
	"strconv"

	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentOrgID reads the tenant id the auth middleware placed in the context
func currentOrgID(c *gin.Context) string {
	orgID, _ := c.Get("organization_id")
	if s, ok := orgID.(string); ok {
		return s
	}
	return ""
}

// currentUserID reads the authenticated user's id as an ObjectID
func currentUserID(c *gin.Context) primitive.ObjectID {
	userID, _ := c.Get("user_id")
	s, ok := userID.(string)
	if !ok {
		return primitive.NilObjectID
	}
	objID, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID
	}
	return objID
}

// pagination reads page/pageSize query params with defaults
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// handleServiceError maps service sentinel errors to HTTP responses
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalError(c, err.Error())
	}
}
