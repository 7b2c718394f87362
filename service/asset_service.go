package service

import (
	"errors"
	"fmt"
	"time"

	"cyberguard/database"
	"cyberguard/engine/risk"
	"cyberguard/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AssetService struct{}

func NewAssetService() *AssetService {
	return &AssetService{}
}

// AssetPatch is a partial update to an asset. Nil fields are left untouched.
// Any change to the security posture or the risk factors triggers a score
// recompute before the write.
type AssetPatch struct {
	Name               *string
	Description        *string
	Type               *models.AssetType
	Category           *models.AssetCategory
	TechnicalDetails   *models.TechnicalDetails
	EncryptionStatus   *string
	AntivirusInstalled *bool
	FirewallEnabled    *bool
	LastSecurityScan   *time.Time
	RiskFactors        *models.RiskFactors
	Tags               []string
}

// CreateAsset validates, scores and persists a new asset
func (s *AssetService) CreateAsset(asset *models.Asset, createdBy primitive.ObjectID) error {
	if asset.Name == "" || asset.Type == "" {
		return fmt.Errorf("%w: asset name and type are required", ErrValidation)
	}
	if asset.OrganizationID.IsZero() {
		return fmt.Errorf("%w: organization is required", ErrValidation)
	}

	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionAssets)

	now := time.Now()
	asset.ID = primitive.NewObjectID()
	asset.CreatedBy = createdBy
	asset.Version = 1
	asset.CreatedAt = now
	asset.UpdatedAt = now

	if asset.Category == "" {
		asset.Category = models.CategoryMedium
	}
	if asset.Security.EncryptionStatus == "" {
		asset.Security.EncryptionStatus = models.EncryptionUnknown
	}
	if asset.Security.Vulnerabilities == nil {
		asset.Security.Vulnerabilities = []models.AssetVulnerability{}
	}
	if asset.RiskAssessment.RiskFactors == (models.RiskFactors{}) {
		asset.RiskAssessment.RiskFactors = models.RiskFactors{Exposure: 50, Vulnerability: 50, Threat: 50, Impact: 50}
	}

	s.rescore(asset, createdBy, now)

	if _, err := collection.InsertOne(ctx, asset); err != nil {
		return fmt.Errorf("failed to create asset: %v", err)
	}

	asset.RiskLevel = risk.Level(asset.RiskAssessment.OverallRiskScore)
	return nil
}

// GetAssetByID retrieves one asset scoped to an organization
func (s *AssetService) GetAssetByID(orgID, assetID string) (*models.Asset, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, orgObjID, err := parseAssetIDs(orgID, assetID)
	if err != nil {
		return nil, err
	}

	collection := database.GetCollection(models.CollectionAssets)

	var asset models.Asset
	err = collection.FindOne(ctx, bson.M{"_id": objID, "organization_id": orgObjID}).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: asset", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch asset: %v", err)
	}

	asset.RiskLevel = risk.Level(asset.RiskAssessment.OverallRiskScore)
	return &asset, nil
}

// ListAssets lists assets with filtering and pagination. riskLevel filters
// on the persisted score using the level bands.
func (s *AssetService) ListAssets(orgID string, assetType, category, riskLevel string, page, pageSize int) ([]*models.Asset, int64, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	collection := database.GetCollection(models.CollectionAssets)

	filter := bson.M{"organization_id": orgObjID}
	if assetType != "" {
		filter["type"] = assetType
	}
	if category != "" {
		filter["category"] = category
	}
	if riskLevel != "" {
		if band, ok := riskLevelBands[riskLevel]; ok {
			filter["risk_assessment.overall_risk_score"] = band
		}
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %v", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "risk_assessment.overall_risk_score", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %v", err)
	}
	defer cursor.Close(ctx)

	var assets []*models.Asset
	if err = cursor.All(ctx, &assets); err != nil {
		return nil, 0, fmt.Errorf("failed to decode assets: %v", err)
	}

	for _, a := range assets {
		a.RiskLevel = risk.Level(a.RiskAssessment.OverallRiskScore)
	}

	return assets, total, nil
}

// riskLevelBands maps a risk level to its score range filter
var riskLevelBands = map[string]bson.M{
	"critical": {"$gte": 80},
	"high":     {"$gte": 60, "$lt": 80},
	"medium":   {"$gte": 40, "$lt": 60},
	"low":      {"$lt": 40},
}

// UpdateAsset applies a patch to an asset as a single read-modify-write.
// Posture or factor changes recompute the score and append an assessment
// history entry; a concurrent writer surfaces as ErrConflict.
func (s *AssetService) UpdateAsset(orgID, assetID string, patch AssetPatch, updatedBy primitive.ObjectID) (*models.Asset, error) {
	asset, err := s.GetAssetByID(orgID, assetID)
	if err != nil {
		return nil, err
	}

	securityChanged := false

	if patch.Name != nil {
		asset.Name = *patch.Name
	}
	if patch.Description != nil {
		asset.Description = *patch.Description
	}
	if patch.Type != nil {
		asset.Type = *patch.Type
	}
	if patch.Category != nil {
		asset.Category = *patch.Category
	}
	if patch.TechnicalDetails != nil {
		asset.TechnicalDetails = *patch.TechnicalDetails
	}
	if patch.Tags != nil {
		asset.Tags = patch.Tags
	}
	if patch.EncryptionStatus != nil {
		asset.Security.EncryptionStatus = *patch.EncryptionStatus
		securityChanged = true
	}
	if patch.AntivirusInstalled != nil {
		asset.Security.AntivirusInstalled = *patch.AntivirusInstalled
		securityChanged = true
	}
	if patch.FirewallEnabled != nil {
		asset.Security.FirewallEnabled = *patch.FirewallEnabled
		securityChanged = true
	}
	if patch.LastSecurityScan != nil {
		asset.Security.LastSecurityScan = patch.LastSecurityScan
		securityChanged = true
	}
	if patch.RiskFactors != nil {
		asset.RiskAssessment.RiskFactors = *patch.RiskFactors
		securityChanged = true
	}

	now := time.Now()
	if securityChanged {
		s.rescore(asset, updatedBy, now)
	}
	asset.UpdatedBy = updatedBy

	if err := s.replaceVersioned(asset, now); err != nil {
		return nil, err
	}

	asset.RiskLevel = risk.Level(asset.RiskAssessment.OverallRiskScore)
	return asset, nil
}

// AddVulnerability appends a vulnerability record and rescores the asset
func (s *AssetService) AddVulnerability(orgID, assetID string, vuln models.AssetVulnerability, actor primitive.ObjectID) (*models.Asset, error) {
	if vuln.Severity == "" {
		return nil, fmt.Errorf("%w: vulnerability severity is required", ErrValidation)
	}

	asset, err := s.GetAssetByID(orgID, assetID)
	if err != nil {
		return nil, err
	}

	vuln.ID = uuid.New().String()
	if vuln.Status == "" {
		vuln.Status = models.VulnStatusOpen
	}
	if vuln.DiscoveredAt.IsZero() {
		vuln.DiscoveredAt = time.Now()
	}
	asset.Security.Vulnerabilities = append(asset.Security.Vulnerabilities, vuln)

	now := time.Now()
	s.rescore(asset, actor, now)
	asset.UpdatedBy = actor

	if err := s.replaceVersioned(asset, now); err != nil {
		return nil, err
	}

	asset.RiskLevel = risk.Level(asset.RiskAssessment.OverallRiskScore)
	return asset, nil
}

// UpdateVulnerabilityStatus changes one embedded vulnerability's status and
// rescores the asset
func (s *AssetService) UpdateVulnerabilityStatus(orgID, assetID, vulnID, status string, actor primitive.ObjectID) (*models.Asset, error) {
	switch status {
	case models.VulnStatusOpen, models.VulnStatusInProgress, models.VulnStatusResolved, models.VulnStatusFalsePositive:
	default:
		return nil, fmt.Errorf("%w: unknown vulnerability status %q", ErrValidation, status)
	}

	asset, err := s.GetAssetByID(orgID, assetID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range asset.Security.Vulnerabilities {
		if asset.Security.Vulnerabilities[i].ID == vulnID || asset.Security.Vulnerabilities[i].CVEID == vulnID {
			asset.Security.Vulnerabilities[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: vulnerability", ErrNotFound)
	}

	now := time.Now()
	s.rescore(asset, actor, now)
	asset.UpdatedBy = actor

	if err := s.replaceVersioned(asset, now); err != nil {
		return nil, err
	}

	asset.RiskLevel = risk.Level(asset.RiskAssessment.OverallRiskScore)
	return asset, nil
}

// DeleteAsset removes an asset unless a threat still references it. The
// reference check keeps incident evidence intact.
func (s *AssetService) DeleteAsset(orgID, assetID string) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, orgObjID, err := parseAssetIDs(orgID, assetID)
	if err != nil {
		return err
	}

	threats := database.GetCollection(models.CollectionThreats)
	refs, err := threats.CountDocuments(ctx, bson.M{
		"organization_id":          orgObjID,
		"affected_assets.asset_id": objID,
	})
	if err != nil {
		return fmt.Errorf("failed to check asset references: %v", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: asset is referenced by %d threat(s)", ErrConflict, refs)
	}

	collection := database.GetCollection(models.CollectionAssets)
	result, err := collection.DeleteOne(ctx, bson.M{"_id": objID, "organization_id": orgObjID})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: asset", ErrNotFound)
	}

	return nil
}

// GetAssetStats returns per-organization asset statistics for the dashboard
func (s *AssetService) GetAssetStats(orgID string) (map[string]interface{}, error) {
	ctx, cancel := database.NewAggregateContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	collection := database.GetCollection(models.CollectionAssets)

	pipeline := []bson.M{
		{"$match": bson.M{"organization_id": orgObjID}},
		{"$group": bson.M{
			"_id":       "$category",
			"count":     bson.M{"$sum": 1},
			"avg_score": bson.M{"$avg": "$risk_assessment.overall_risk_score"},
		}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate assets: %v", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		ID       string  `bson:"_id"`
		Count    int     `bson:"count"`
		AvgScore float64 `bson:"avg_score"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode asset stats: %v", err)
	}

	total := 0
	weighted := 0.0
	byCategory := make(map[string]int)
	for _, r := range results {
		byCategory[r.ID] = r.Count
		total += r.Count
		weighted += r.AvgScore * float64(r.Count)
	}

	stats := map[string]interface{}{
		"total":       total,
		"by_category": byCategory,
	}
	if total > 0 {
		stats["avg_risk_score"] = weighted / float64(total)
	}

	return stats, nil
}

// rescore recomputes the overall score from the current factors and posture
// and appends the assessment history entry. Callers own persisting the
// asset afterwards.
func (s *AssetService) rescore(asset *models.Asset, actor primitive.ObjectID, now time.Time) {
	score := risk.Score(asset.RiskAssessment.RiskFactors, asset.Security)
	asset.RiskAssessment.OverallRiskScore = score
	asset.RiskAssessment.LastAssessment = now
	asset.RiskAssessment.NextAssessment = now.Add(30 * 24 * time.Hour)
	asset.RiskAssessment.AssessmentHistory = append(asset.RiskAssessment.AssessmentHistory, models.AssessmentRecord{
		Score:      score,
		Factors:    asset.RiskAssessment.RiskFactors,
		AssessedAt: now,
		AssessedBy: actor,
	})
}

// replaceVersioned writes the asset back filtering on the version that was
// read. A zero match means a concurrent writer won; the caller gets a
// retryable conflict.
func (s *AssetService) replaceVersioned(asset *models.Asset, now time.Time) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionAssets)

	readVersion := asset.Version
	asset.Version = readVersion + 1
	asset.UpdatedAt = now

	result, err := collection.ReplaceOne(ctx, bson.M{"_id": asset.ID, "version": readVersion}, asset)
	if err != nil {
		return fmt.Errorf("failed to update asset: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: asset was modified concurrently, retry", ErrConflict)
	}

	return nil
}

func parseAssetIDs(orgID, assetID string) (primitive.ObjectID, primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(assetID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("%w: invalid asset id", ErrValidation)
	}
	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}
	return objID, orgObjID, nil
}
