package api

import (
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
)

type ComplianceHandler struct {
	complianceService *service.ComplianceService
}

func NewComplianceHandler() *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: service.NewComplianceService(),
	}
}

// GetCompliance returns the current compliance snapshot for the caller's
// organization. This endpoint always answers 200; read failures degrade to
// a zero snapshot.
// GET /api/compliance
func (h *ComplianceHandler) GetCompliance(c *gin.Context) {
	snapshot := h.complianceService.Evaluate(currentOrgID(c))
	utils.Success(c, snapshot)
}
