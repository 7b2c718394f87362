package api

import (
	"cyberguard/service"
	"cyberguard/utils"

	"github.com/gin-gonic/gin"
)

type InsuranceHandler struct {
	insuranceService *service.InsuranceService
}

func NewInsuranceHandler() *InsuranceHandler {
	return &InsuranceHandler{
		insuranceService: service.NewInsuranceService(),
	}
}

// GetReadiness returns the insurance-readiness snapshot for the caller's
// organization. Always answers 200; read failures degrade to a zero
// snapshot.
// GET /api/insurance/readiness
func (h *InsuranceHandler) GetReadiness(c *gin.Context) {
	snapshot := h.insuranceService.Evaluate(currentOrgID(c))
	utils.Success(c, snapshot)
}
