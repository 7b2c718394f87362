package api

import (
	"strconv"

	"cyberguard/models"
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ThreatHandler struct {
	threatService *service.ThreatService
}

func NewThreatHandler(threatService *service.ThreatService) *ThreatHandler {
	return &ThreatHandler{
		threatService: threatService,
	}
}

type createThreatRequest struct {
	Title            string                   `json:"title" binding:"required"`
	Description      string                   `json:"description" binding:"required"`
	Type             models.ThreatType        `json:"type" binding:"required"`
	Category         string                   `json:"category" binding:"required"`
	Severity         models.ThreatSeverity    `json:"severity" binding:"required"`
	TechnicalDetails models.ThreatTechDetails `json:"technicalDetails"`
	Tags             []string                 `json:"tags"`
}

// CreateThreat reports a new incident; it is classified before persisting
// POST /api/threats
func (h *ThreatHandler) CreateThreat(c *gin.Context) {
	var req createThreatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	orgID, err := primitive.ObjectIDFromHex(currentOrgID(c))
	if err != nil {
		utils.BadRequest(c, "invalid organization id")
		return
	}

	threat, err := h.threatService.CreateThreat(c.Request.Context(), orgID, currentUserID(c), service.CreateThreatInput{
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		Category:         req.Category,
		Severity:         req.Severity,
		TechnicalDetails: req.TechnicalDetails,
		Tags:             req.Tags,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, threat)
}

// ListThreats lists incidents with filtering and pagination
// GET /api/threats
func (h *ThreatHandler) ListThreats(c *gin.Context) {
	page, pageSize := pagination(c)

	threats, total, err := h.threatService.ListThreats(
		currentOrgID(c),
		c.Query("severity"),
		c.Query("status"),
		page, pageSize,
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessWithPagination(c, threats, total, page, pageSize)
}

// GetThreat gets an incident by ID
// GET /api/threats/:id
func (h *ThreatHandler) GetThreat(c *gin.Context) {
	threat, err := h.threatService.GetThreatByID(currentOrgID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, threat)
}

type updateThreatRequest struct {
	Title            *string                   `json:"title"`
	Description      *string                   `json:"description"`
	Type             *models.ThreatType        `json:"type"`
	Category         *string                   `json:"category"`
	Severity         *models.ThreatSeverity    `json:"severity"`
	Status           *models.ThreatStatus      `json:"status"`
	AssignedTo       *string                   `json:"assignedTo"`
	TechnicalDetails *models.ThreatTechDetails `json:"technicalDetails"`
	Tags             []string                  `json:"tags"`
}

// UpdateThreat applies a partial update and reclassifies the incident
// PUT /api/threats/:id
func (h *ThreatHandler) UpdateThreat(c *gin.Context) {
	var req updateThreatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	patch := service.ThreatPatch{
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		Category:         req.Category,
		Severity:         req.Severity,
		Status:           req.Status,
		TechnicalDetails: req.TechnicalDetails,
		Tags:             req.Tags,
	}
	if req.AssignedTo != nil {
		assignee, err := primitive.ObjectIDFromHex(*req.AssignedTo)
		if err != nil {
			utils.BadRequest(c, "invalid assignee id")
			return
		}
		patch.AssignedTo = &assignee
	}

	threat, err := h.threatService.UpdateThreat(c.Request.Context(), currentOrgID(c), c.Param("id"), patch, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, threat)
}

type updateThreatStatusRequest struct {
	Status models.ThreatStatus `json:"status" binding:"required"`
	Notes  string              `json:"notes"`
}

// UpdateThreatStatus transitions an incident through the state machine
// PUT /api/threats/:id/status
func (h *ThreatHandler) UpdateThreatStatus(c *gin.Context) {
	var req updateThreatStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	threat, err := h.threatService.UpdateStatus(currentOrgID(c), c.Param("id"), req.Status, req.Notes, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, threat)
}

type timelineEventRequest struct {
	Event   string `json:"event" binding:"required"`
	Details string `json:"details"`
}

// AddTimelineEvent appends a free-form event to the incident timeline
// POST /api/threats/:id/timeline
func (h *ThreatHandler) AddTimelineEvent(c *gin.Context) {
	var req timelineEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	threat, err := h.threatService.AddTimelineEvent(currentOrgID(c), c.Param("id"), req.Event, req.Details, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, threat)
}

type affectedAssetRequest struct {
	AssetID string `json:"asset" binding:"required"`
	Impact  string `json:"impact"`
	Status  string `json:"status"`
}

// AddAffectedAsset links an asset to the incident
// POST /api/threats/:id/assets
func (h *ThreatHandler) AddAffectedAsset(c *gin.Context) {
	var req affectedAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	threat, err := h.threatService.AddAffectedAsset(currentOrgID(c), c.Param("id"), req.AssetID, req.Impact, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, threat)
}

// GetThreatStats aggregates incident counts over a trailing window
// GET /api/threats/stats
func (h *ThreatHandler) GetThreatStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	stats, err := h.threatService.GetThreatStats(currentOrgID(c), days)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, stats)
}

// DeleteThreat removes an incident
// DELETE /api/threats/:id
func (h *ThreatHandler) DeleteThreat(c *gin.Context) {
	if err := h.threatService.DeleteThreat(currentOrgID(c), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Threat deleted", nil)
}
