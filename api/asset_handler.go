package api

import (
	"time"

	"cyberguard/models"
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssetHandler struct {
	assetService *service.AssetService
}

func NewAssetHandler() *AssetHandler {
	return &AssetHandler{
		assetService: service.NewAssetService(),
	}
}

type createAssetRequest struct {
	Name             string                   `json:"name" binding:"required"`
	Description      string                   `json:"description"`
	Type             models.AssetType         `json:"type" binding:"required"`
	Category         models.AssetCategory     `json:"category"`
	TechnicalDetails models.TechnicalDetails  `json:"technicalDetails"`
	Security         *assetSecurityRequest    `json:"security"`
	RiskFactors      *models.RiskFactors      `json:"riskFactors"`
	Tags             []string                 `json:"tags"`
}

type assetSecurityRequest struct {
	EncryptionStatus   string     `json:"encryptionStatus"`
	AntivirusInstalled bool       `json:"antivirusInstalled"`
	FirewallEnabled    bool       `json:"firewallEnabled"`
	LastSecurityScan   *time.Time `json:"lastSecurityScan"`
}

// CreateAsset registers a new asset and computes its initial risk score
// POST /api/assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	orgID, err := primitive.ObjectIDFromHex(currentOrgID(c))
	if err != nil {
		utils.BadRequest(c, "invalid organization id")
		return
	}

	asset := &models.Asset{
		OrganizationID:   orgID,
		Name:             req.Name,
		Description:      req.Description,
		Type:             req.Type,
		Category:         req.Category,
		TechnicalDetails: req.TechnicalDetails,
		Tags:             req.Tags,
	}
	if req.Security != nil {
		asset.Security = models.SecurityPosture{
			EncryptionStatus:   req.Security.EncryptionStatus,
			AntivirusInstalled: req.Security.AntivirusInstalled,
			FirewallEnabled:    req.Security.FirewallEnabled,
			LastSecurityScan:   req.Security.LastSecurityScan,
		}
	}
	if req.RiskFactors != nil {
		asset.RiskAssessment.RiskFactors = *req.RiskFactors
	}

	if err := h.assetService.CreateAsset(asset, currentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, asset)
}

// ListAssets lists assets with filtering and pagination
// GET /api/assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	page, pageSize := pagination(c)

	assets, total, err := h.assetService.ListAssets(
		currentOrgID(c),
		c.Query("type"),
		c.Query("category"),
		c.Query("riskLevel"),
		page, pageSize,
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessWithPagination(c, assets, total, page, pageSize)
}

// GetAsset gets an asset by ID
// GET /api/assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetService.GetAssetByID(currentOrgID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, asset)
}

type updateAssetRequest struct {
	Name               *string                  `json:"name"`
	Description        *string                  `json:"description"`
	Type               *models.AssetType        `json:"type"`
	Category           *models.AssetCategory    `json:"category"`
	TechnicalDetails   *models.TechnicalDetails `json:"technicalDetails"`
	EncryptionStatus   *string                  `json:"encryptionStatus"`
	AntivirusInstalled *bool                    `json:"antivirusInstalled"`
	FirewallEnabled    *bool                    `json:"firewallEnabled"`
	LastSecurityScan   *time.Time               `json:"lastSecurityScan"`
	RiskFactors        *models.RiskFactors      `json:"riskFactors"`
	Tags               []string                 `json:"tags"`
}

// UpdateAsset applies a partial update; posture changes rescore the asset
// PUT /api/assets/:id
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req updateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	patch := service.AssetPatch{
		Name:               req.Name,
		Description:        req.Description,
		Type:               req.Type,
		Category:           req.Category,
		TechnicalDetails:   req.TechnicalDetails,
		EncryptionStatus:   req.EncryptionStatus,
		AntivirusInstalled: req.AntivirusInstalled,
		FirewallEnabled:    req.FirewallEnabled,
		LastSecurityScan:   req.LastSecurityScan,
		RiskFactors:        req.RiskFactors,
		Tags:               req.Tags,
	}

	asset, err := h.assetService.UpdateAsset(currentOrgID(c), c.Param("id"), patch, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, asset)
}

// DeleteAsset removes an asset unless a threat still references it
// DELETE /api/assets/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if err := h.assetService.DeleteAsset(currentOrgID(c), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Asset deleted", nil)
}

type addVulnerabilityRequest struct {
	CVEID       string `json:"cveId"`
	Severity    string `json:"severity" binding:"required,oneof=critical high medium low"`
	Description string `json:"description"`
	Remediation string `json:"remediation"`
}

// AddVulnerability appends a vulnerability record and rescores the asset
// POST /api/assets/:id/vulnerabilities
func (h *AssetHandler) AddVulnerability(c *gin.Context) {
	var req addVulnerabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	vuln := models.AssetVulnerability{
		CVEID:       req.CVEID,
		Severity:    req.Severity,
		Description: req.Description,
		Remediation: req.Remediation,
	}

	asset, err := h.assetService.AddVulnerability(currentOrgID(c), c.Param("id"), vuln, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, asset)
}

type updateVulnStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateVulnerabilityStatus changes one vulnerability's status and rescores
// PUT /api/assets/:id/vulnerabilities/:vulnId
func (h *AssetHandler) UpdateVulnerabilityStatus(c *gin.Context) {
	var req updateVulnStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	asset, err := h.assetService.UpdateVulnerabilityStatus(
		currentOrgID(c), c.Param("id"), c.Param("vulnId"), req.Status, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, asset)
}

// GetAssetStats returns per-organization asset statistics
// GET /api/assets/stats
func (h *AssetHandler) GetAssetStats(c *gin.Context) {
	stats, err := h.assetService.GetAssetStats(currentOrgID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, stats)
}
