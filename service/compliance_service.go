package service

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"cyberguard/database"
	"cyberguard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplianceSnapshot is the computed compliance view for one organization.
// Field names are part of the API contract.
type ComplianceSnapshot struct {
	Compliance   int      `json:"compliance"`
	Requirements []string `json:"requirements"`
}

// complianceInputs are the per-organization counts the five rules evaluate.
// Gathering them is separated from rule evaluation so the rule math stays a
// pure function.
type complianceInputs struct {
	UnsecuredCriticalAssets int64
	UnresolvedSevereThreats int64
	AssetsMissingRecentScan int64
	UncategorizedAssets     int64
	SecurityTrainings       int64
}

const (
	complianceCacheTTL = 60 * time.Second
	recentScanWindow   = 30 * 24 * time.Hour
)

type ComplianceService struct{}

func NewComplianceService() *ComplianceService {
	return &ComplianceService{}
}

// Evaluate computes the compliance snapshot for an organization. Any read
// failure degrades to a zero snapshot with a fixed message; this never
// returns an error because dashboards must always render something.
func (s *ComplianceService) Evaluate(orgID string) ComplianceSnapshot {
	if cached, ok := readSnapshotCache[ComplianceSnapshot]("compliance", orgID); ok {
		return cached
	}

	inputs, err := s.gatherInputs(orgID)
	if err != nil {
		log.Printf("Compliance evaluation degraded for org %s: %v", orgID, err)
		return ComplianceSnapshot{Compliance: 0, Requirements: []string{"Unable to calculate compliance"}}
	}

	snapshot := evaluateCompliance(inputs)
	writeSnapshotCache("compliance", orgID, snapshot)
	return snapshot
}

// evaluateCompliance applies the five fixed rules in order. Every rule
// contributes exactly one requirement string whether it passes or fails, and
// no rule short-circuits another.
func evaluateCompliance(in complianceInputs) ComplianceSnapshot {
	met, total := 0, 0
	requirements := make([]string, 0, 5)

	// 1. Critical assets must carry antivirus and firewall (vacuously
	// satisfied when there are no critical assets).
	total++
	if in.UnsecuredCriticalAssets == 0 {
		requirements = append(requirements, "All critical assets have antivirus and firewall enabled.")
		met++
	} else {
		requirements = append(requirements, "Some critical assets are missing antivirus or firewall.")
	}

	// 2. No unresolved critical or high threats.
	total++
	if in.UnresolvedSevereThreats == 0 {
		requirements = append(requirements, "No unresolved critical or high threats.")
		met++
	} else {
		requirements = append(requirements, "Resolve all critical or high threats.")
	}

	// 3. Every asset scanned within the last 30 days.
	total++
	if in.AssetsMissingRecentScan == 0 {
		requirements = append(requirements, "All assets have a recent security scan.")
		met++
	} else {
		requirements = append(requirements, "Some assets are missing a recent security scan.")
	}

	// 4. Every asset categorized.
	total++
	if in.UncategorizedAssets == 0 {
		requirements = append(requirements, "All assets are categorized.")
		met++
	} else {
		requirements = append(requirements, "Some assets are not categorized.")
	}

	// 5. At least one completed security training. Scoped to the caller's
	// organization; the legacy behavior counted every tenant's records.
	total++
	if in.SecurityTrainings > 0 {
		requirements = append(requirements, "At least one employee security training completed.")
		met++
	} else {
		requirements = append(requirements, "No employee security training completed.")
	}

	percentage := int(math.Round(100 * float64(met) / float64(total)))
	return ComplianceSnapshot{Compliance: percentage, Requirements: requirements}
}

// gatherInputs runs the five count queries. Snapshot consistency across the
// queries is not required; the dashboard is advisory.
func (s *ComplianceService) gatherInputs(orgID string) (complianceInputs, error) {
	ctx, cancel := database.NewAggregateContext()
	defer cancel()

	var in complianceInputs

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return in, err
	}

	assets := database.GetCollection(models.CollectionAssets)
	threats := database.GetCollection(models.CollectionThreats)
	trainings := database.GetCollection(models.CollectionTrainings)

	in.UnsecuredCriticalAssets, err = assets.CountDocuments(ctx, bson.M{
		"organization_id": orgObjID,
		"category":        models.CategoryCritical,
		"$or": []bson.M{
			{"security.antivirus_installed": false},
			{"security.firewall_enabled": false},
		},
	})
	if err != nil {
		return in, err
	}

	in.UnresolvedSevereThreats, err = threats.CountDocuments(ctx, bson.M{
		"organization_id": orgObjID,
		"severity":        bson.M{"$in": []models.ThreatSeverity{models.SeverityCritical, models.SeverityHigh}},
		"status":          bson.M{"$ne": models.StatusResolved},
	})
	if err != nil {
		return in, err
	}

	scanCutoff := time.Now().Add(-recentScanWindow)
	in.AssetsMissingRecentScan, err = assets.CountDocuments(ctx, bson.M{
		"organization_id": orgObjID,
		"$or": []bson.M{
			{"security.last_security_scan": bson.M{"$exists": false}},
			{"security.last_security_scan": nil},
			{"security.last_security_scan": bson.M{"$lt": scanCutoff}},
		},
	})
	if err != nil {
		return in, err
	}

	in.UncategorizedAssets, err = assets.CountDocuments(ctx, bson.M{
		"organization_id": orgObjID,
		"$or": []bson.M{
			{"category": bson.M{"$exists": false}},
			{"category": ""},
		},
	})
	if err != nil {
		return in, err
	}

	in.SecurityTrainings, err = trainings.CountDocuments(ctx, bson.M{
		"organization_id": orgObjID,
		"type":            models.TrainingTypeSecurity,
	})
	if err != nil {
		return in, err
	}

	return in, nil
}

// readSnapshotCache fetches a cached snapshot from Redis. Cache failures
// degrade to a recompute, never to an error.
func readSnapshotCache[T any](prefix, orgID string) (T, bool) {
	var out T

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := database.GetRedis().Get(ctx, prefix+":"+orgID).Bytes()
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

// writeSnapshotCache stores a snapshot in Redis, best effort
func writeSnapshotCache[T any](prefix, orgID string, snapshot T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := database.GetRedis().Set(ctx, prefix+":"+orgID, raw, complianceCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache %s snapshot for org %s: %v", prefix, orgID, err)
	}
}
