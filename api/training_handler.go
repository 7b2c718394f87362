package api

import (
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainingHandler struct {
	trainingService *service.TrainingService
}

func NewTrainingHandler() *TrainingHandler {
	return &TrainingHandler{
		trainingService: service.NewTrainingService(),
	}
}

type recordTrainingRequest struct {
	Type string `json:"type" binding:"required,oneof=security privacy other"`
}

// RecordTraining stores a completed training for the authenticated user
// POST /api/trainings
func (h *TrainingHandler) RecordTraining(c *gin.Context) {
	var req recordTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	orgID, err := primitive.ObjectIDFromHex(currentOrgID(c))
	if err != nil {
		utils.BadRequest(c, "invalid organization id")
		return
	}

	training, err := h.trainingService.RecordTraining(orgID, currentUserID(c), req.Type)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, training)
}

// ListTrainings lists completed trainings for the caller's organization
// GET /api/trainings
func (h *TrainingHandler) ListTrainings(c *gin.Context) {
	page, pageSize := pagination(c)

	trainings, total, err := h.trainingService.ListTrainings(currentOrgID(c), c.Query("type"), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessWithPagination(c, trainings, total, page, pageSize)
}
