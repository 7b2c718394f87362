package api

import (
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	assetService      *service.AssetService
	threatService     *service.ThreatService
	complianceService *service.ComplianceService
	insuranceService  *service.InsuranceService
}

func NewDashboardHandler(threatService *service.ThreatService) *DashboardHandler {
	return &DashboardHandler{
		assetService:      service.NewAssetService(),
		threatService:     threatService,
		complianceService: service.NewComplianceService(),
		insuranceService:  service.NewInsuranceService(),
	}
}

// GetOverview aggregates the organization's security posture into one view.
// The compliance and readiness blocks degrade individually; an asset or
// threat read failure degrades the whole endpoint.
// GET /api/dashboard
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	orgID := currentOrgID(c)

	assetStats, err := h.assetService.GetAssetStats(orgID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	activeThreats, err := h.threatService.CountActiveThreats(orgID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	compliance := h.complianceService.Evaluate(orgID)
	insurance := h.insuranceService.Evaluate(orgID)

	utils.Success(c, gin.H{
		"assets":        assetStats,
		"activeThreats": activeThreats,
		"compliance":    compliance,
		"insurance":     insurance,
	})
}
