package service

import (
	"log"

	"cyberguard/database"
	"cyberguard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InsuranceSnapshot is the computed insurance-readiness view for one
// organization. Field names are part of the API contract.
type InsuranceSnapshot struct {
	Readiness    int      `json:"readiness"`
	Requirements []string `json:"requirements"`
}

type InsuranceService struct{}

func NewInsuranceService() *InsuranceService {
	return &InsuranceService{}
}

// Evaluate computes the readiness snapshot for an organization. Read
// failures degrade to a zero snapshot with a fixed message and never
// propagate.
func (s *InsuranceService) Evaluate(orgID string) InsuranceSnapshot {
	if cached, ok := readSnapshotCache[InsuranceSnapshot]("insurance", orgID); ok {
		return cached
	}

	assetCount, resolvedThreats, err := s.gatherCounts(orgID)
	if err != nil {
		log.Printf("Insurance evaluation degraded for org %s: %v", orgID, err)
		return InsuranceSnapshot{Readiness: 0, Requirements: []string{"Unable to calculate readiness"}}
	}

	snapshot := evaluateReadiness(assetCount, resolvedThreats)
	writeSnapshotCache("insurance", orgID, snapshot)
	return snapshot
}

// evaluateReadiness applies the ordered deductions. The two static
// requirements are always appended. The score is clamped defensively even
// though the deductions cannot currently drive it below 50.
func evaluateReadiness(assetCount, resolvedThreats int64) InsuranceSnapshot {
	readiness := 100
	requirements := []string{}

	if assetCount == 0 {
		readiness -= 30
		requirements = append(requirements, "Add your first asset")
	} else if assetCount < 3 {
		readiness -= 10
		requirements = append(requirements, "Add more assets to improve coverage")
	}

	if resolvedThreats == 0 {
		readiness -= 20
		requirements = append(requirements, "Resolve detected threats")
	}

	requirements = append(requirements, "Incident response plan")
	requirements = append(requirements, "Employee security training")

	if readiness < 0 {
		readiness = 0
	}
	if readiness > 100 {
		readiness = 100
	}

	return InsuranceSnapshot{Readiness: readiness, Requirements: requirements}
}

func (s *InsuranceService) gatherCounts(orgID string) (assetCount, resolvedThreats int64, err error) {
	ctx, cancel := database.NewAggregateContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return 0, 0, err
	}

	assets := database.GetCollection(models.CollectionAssets)
	threats := database.GetCollection(models.CollectionThreats)

	assetCount, err = assets.CountDocuments(ctx, bson.M{"organization_id": orgObjID})
	if err != nil {
		return 0, 0, err
	}

	resolvedThreats, err = threats.CountDocuments(ctx, bson.M{
		"organization_id": orgObjID,
		"status":          models.StatusResolved,
	})
	if err != nil {
		return 0, 0, err
	}

	return assetCount, resolvedThreats, nil
}
