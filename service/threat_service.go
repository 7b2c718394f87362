package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cyberguard/database"
	"cyberguard/engine/detect"
	"cyberguard/models"
	"cyberguard/service/notify"

	"github.com/spaolacci/murmur3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// priorityMap derives the incident priority from its severity. Priority is
// never settable by callers; it is recomputed on every severity write.
var priorityMap = map[models.ThreatSeverity]models.ThreatPriority{
	models.SeverityCritical: models.PriorityP1,
	models.SeverityHigh:     models.PriorityP2,
	models.SeverityMedium:   models.PriorityP3,
	models.SeverityLow:      models.PriorityP4,
	models.SeverityInfo:     models.PriorityP4,
}

// DerivePriority maps a severity to its priority tier
func DerivePriority(severity models.ThreatSeverity) models.ThreatPriority {
	if p, ok := priorityMap[severity]; ok {
		return p
	}
	return models.PriorityP4
}

// allowedTransitions is the incident state machine. resolved and
// false_positive are soft-terminal: leaving them is a reopen override,
// allowed but logged.
var allowedTransitions = map[models.ThreatStatus][]models.ThreatStatus{
	models.StatusDetected: {
		models.StatusInvestigating, models.StatusContained,
		models.StatusEscalated, models.StatusFalsePositive, models.StatusResolved,
	},
	models.StatusInvestigating: {
		models.StatusContained, models.StatusEscalated,
		models.StatusFalsePositive, models.StatusResolved,
	},
	models.StatusContained: {
		models.StatusInvestigating, models.StatusEscalated, models.StatusResolved,
	},
	models.StatusEscalated: {
		models.StatusInvestigating, models.StatusContained, models.StatusResolved,
	},
	models.StatusResolved:      {},
	models.StatusFalsePositive: {},
}

// validStatus reports whether the value is a known incident status
func validStatus(status models.ThreatStatus) bool {
	_, ok := allowedTransitions[status]
	return ok
}

// checkTransition validates a status change. It returns reopen=true when the
// transition leaves a soft-terminal state.
func checkTransition(from, to models.ThreatStatus) (reopen bool, err error) {
	if !validStatus(to) {
		return false, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	if from == to {
		return false, nil
	}
	if from == models.StatusResolved || from == models.StatusFalsePositive {
		return true, nil
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: cannot transition from %q to %q", ErrValidation, from, to)
}

// DedupeKey builds a stable correlation key for repeated reports of the
// same event
func DedupeKey(orgID primitive.ObjectID, threatType models.ThreatType, sourceIP, title string) string {
	h := murmur3.New64()
	h.Write([]byte(orgID.Hex()))
	h.Write([]byte(threatType))
	h.Write([]byte(sourceIP))
	h.Write([]byte(title))
	return fmt.Sprintf("%016x", h.Sum64())
}

type ThreatService struct {
	classifier *detect.ClassifierClient
	notifier   *notify.Service
}

func NewThreatService(classifier *detect.ClassifierClient) *ThreatService {
	return &ThreatService{
		classifier: classifier,
		notifier:   notify.NewService(),
	}
}

// CreateThreatInput is the typed payload for reporting a new incident
type CreateThreatInput struct {
	Title            string
	Description      string
	Type             models.ThreatType
	Category         string
	Severity         models.ThreatSeverity
	TechnicalDetails models.ThreatTechDetails
	Tags             []string
}

// CreateThreat classifies and persists a new incident. The classifier call
// is bounded by the caller's context; its failure never fails the create.
func (s *ThreatService) CreateThreat(ctx context.Context, orgID, reportedBy primitive.ObjectID, input CreateThreatInput) (*models.Threat, error) {
	if input.Title == "" || input.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if input.Type == "" || input.Category == "" {
		return nil, fmt.Errorf("%w: type and category are required", ErrValidation)
	}
	if _, ok := priorityMap[input.Severity]; !ok {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrValidation, input.Severity)
	}
	if orgID.IsZero() || reportedBy.IsZero() {
		return nil, fmt.Errorf("%w: organization and reporter are required", ErrValidation)
	}

	magnitude := detect.RiskMagnitude(input.Severity)
	detection := s.classifier.Detect(ctx, magnitude)

	now := time.Now()
	threat := &models.Threat{
		ID:               primitive.NewObjectID(),
		OrganizationID:   orgID,
		ReportedBy:       reportedBy,
		Title:            input.Title,
		Description:      input.Description,
		Type:             input.Type,
		Category:         input.Category,
		Severity:         input.Severity,
		Status:           models.StatusDetected,
		Priority:         DerivePriority(input.Severity),
		DedupeKey:        DedupeKey(orgID, input.Type, input.TechnicalDetails.SourceIP, input.Title),
		AIDetection:      detection,
		TechnicalDetails: input.TechnicalDetails,
		AffectedAssets:   []models.AffectedAsset{},
		Timeline: []models.TimelineEntry{
			statusTimelineEntry(models.StatusDetected, now, reportedBy, ""),
		},
		Tags:      input.Tags,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	dbCtx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionThreats)
	if _, err := collection.InsertOne(dbCtx, threat); err != nil {
		return nil, fmt.Errorf("failed to create threat: %v", err)
	}

	// Best effort; a notification failure never fails the report.
	if err := s.notifier.NotifyThreat(threat); err != nil {
		log.Printf("Failed to create threat notification: %v", err)
	}

	return threat, nil
}

// ThreatPatch is a partial update to an incident. Severity changes recompute
// priority; every update triggers full reclassification so the detection
// block stays consistent with the current record state.
type ThreatPatch struct {
	Title            *string
	Description      *string
	Type             *models.ThreatType
	Category         *string
	Severity         *models.ThreatSeverity
	Status           *models.ThreatStatus
	AssignedTo       *primitive.ObjectID
	TechnicalDetails *models.ThreatTechDetails
	Tags             []string
}

// UpdateThreat applies a patch and reclassifies the incident before
// persisting
func (s *ThreatService) UpdateThreat(ctx context.Context, orgID, threatID string, patch ThreatPatch, actor primitive.ObjectID) (*models.Threat, error) {
	threat, err := s.GetThreatByID(orgID, threatID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		threat.Title = *patch.Title
	}
	if patch.Description != nil {
		threat.Description = *patch.Description
	}
	if patch.Type != nil {
		threat.Type = *patch.Type
	}
	if patch.Category != nil {
		threat.Category = *patch.Category
	}
	if patch.AssignedTo != nil {
		threat.AssignedTo = *patch.AssignedTo
	}
	if patch.TechnicalDetails != nil {
		threat.TechnicalDetails = *patch.TechnicalDetails
	}
	if patch.Tags != nil {
		threat.Tags = patch.Tags
	}
	if patch.Severity != nil {
		if _, ok := priorityMap[*patch.Severity]; !ok {
			return nil, fmt.Errorf("%w: unknown severity %q", ErrValidation, *patch.Severity)
		}
		threat.Severity = *patch.Severity
	}
	threat.Priority = DerivePriority(threat.Severity)
	threat.DedupeKey = DedupeKey(threat.OrganizationID, threat.Type, threat.TechnicalDetails.SourceIP, threat.Title)

	if patch.Status != nil && *patch.Status != threat.Status {
		if err := s.applyTransition(threat, *patch.Status, "", actor); err != nil {
			return nil, err
		}
	}

	// Full reclassification on every update, not only on severity changes,
	// so the detection block always reflects the record as persisted.
	magnitude := detect.RiskMagnitude(threat.Severity)
	threat.AIDetection = s.classifier.Detect(ctx, magnitude)

	if err := s.replaceVersioned(threat); err != nil {
		return nil, err
	}

	return threat, nil
}

// UpdateStatus transitions an incident and appends the timeline entry
func (s *ThreatService) UpdateStatus(orgID, threatID string, newStatus models.ThreatStatus, notes string, actor primitive.ObjectID) (*models.Threat, error) {
	threat, err := s.GetThreatByID(orgID, threatID)
	if err != nil {
		return nil, err
	}

	if newStatus == threat.Status {
		return threat, nil
	}

	if err := s.applyTransition(threat, newStatus, notes, actor); err != nil {
		return nil, err
	}

	if notes != "" {
		threat.Notes = append(threat.Notes, models.ThreatNote{
			Content:   notes,
			CreatedBy: actor,
			CreatedAt: time.Now(),
		})
	}

	if err := s.replaceVersioned(threat); err != nil {
		return nil, err
	}

	return threat, nil
}

// applyTransition validates the status change, mutates the threat and
// appends exactly one timeline entry. Reopen overrides are logged.
func (s *ThreatService) applyTransition(threat *models.Threat, newStatus models.ThreatStatus, notes string, actor primitive.ObjectID) error {
	reopen, err := checkTransition(threat.Status, newStatus)
	if err != nil {
		return err
	}

	details := fmt.Sprintf("Threat status updated to %s", newStatus)
	if reopen {
		details = fmt.Sprintf("Reopened from terminal status %s", threat.Status)
		log.Printf("Reopen override on threat %s: %s -> %s", threat.ID.Hex(), threat.Status, newStatus)
	}

	threat.Status = newStatus
	threat.Timeline = append(threat.Timeline, statusTimelineEntry(newStatus, time.Now(), actor, details))
	return nil
}

// AddTimelineEvent appends a free-form event to the incident timeline
func (s *ThreatService) AddTimelineEvent(orgID, threatID, event, details string, actor primitive.ObjectID) (*models.Threat, error) {
	if event == "" {
		return nil, fmt.Errorf("%w: event is required", ErrValidation)
	}

	threat, err := s.GetThreatByID(orgID, threatID)
	if err != nil {
		return nil, err
	}

	threat.Timeline = append(threat.Timeline, models.TimelineEntry{
		Event:     event,
		Timestamp: time.Now(),
		Actor:     actor,
		Details:   details,
	})

	if err := s.replaceVersioned(threat); err != nil {
		return nil, err
	}

	return threat, nil
}

// AddAffectedAsset links an asset to the incident
func (s *ThreatService) AddAffectedAsset(orgID, threatID, assetID, impact, status string) (*models.Threat, error) {
	assetObjID, err := primitive.ObjectIDFromHex(assetID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid asset id", ErrValidation)
	}

	threat, err := s.GetThreatByID(orgID, threatID)
	if err != nil {
		return nil, err
	}

	if impact == "" {
		impact = "low"
	}
	if status == "" {
		status = "affected"
	}

	threat.AffectedAssets = append(threat.AffectedAssets, models.AffectedAsset{
		AssetID: assetObjID,
		Impact:  impact,
		Status:  status,
	})

	if err := s.replaceVersioned(threat); err != nil {
		return nil, err
	}

	return threat, nil
}

// GetThreatByID retrieves one incident scoped to an organization
func (s *ThreatService) GetThreatByID(orgID, threatID string) (*models.Threat, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(threatID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid threat id", ErrValidation)
	}
	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	collection := database.GetCollection(models.CollectionThreats)

	var threat models.Threat
	err = collection.FindOne(ctx, bson.M{"_id": objID, "organization_id": orgObjID}).Decode(&threat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: threat", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch threat: %v", err)
	}

	return &threat, nil
}

// ListThreats lists incidents with filtering and pagination
func (s *ThreatService) ListThreats(orgID string, severity, status string, page, pageSize int) ([]*models.Threat, int64, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	collection := database.GetCollection(models.CollectionThreats)

	filter := bson.M{"organization_id": orgObjID}
	if severity != "" {
		filter["severity"] = severity
	}
	if status != "" {
		filter["status"] = status
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count threats: %v", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list threats: %v", err)
	}
	defer cursor.Close(ctx)

	var threats []*models.Threat
	if err = cursor.All(ctx, &threats); err != nil {
		return nil, 0, fmt.Errorf("failed to decode threats: %v", err)
	}

	return threats, total, nil
}

// CountActiveThreats counts incidents still being worked
func (s *ThreatService) CountActiveThreats(orgID string) (int64, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	collection := database.GetCollection(models.CollectionThreats)
	return collection.CountDocuments(ctx, bson.M{
		"organization_id": orgObjID,
		"status": bson.M{"$in": []models.ThreatStatus{
			models.StatusDetected, models.StatusInvestigating, models.StatusContained, models.StatusEscalated,
		}},
	})
}

// GetThreatStats aggregates incident counts by type, severity and status
// over a trailing window
func (s *ThreatService) GetThreatStats(orgID string, days int) ([]map[string]interface{}, error) {
	ctx, cancel := database.NewAggregateContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	collection := database.GetCollection(models.CollectionThreats)

	pipeline := []bson.M{
		{"$match": bson.M{
			"organization_id":             orgObjID,
			"ai_detection.detection_time": bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"type":     "$type",
				"severity": "$severity",
				"status":   "$status",
			},
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate threats: %v", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		ID struct {
			Type     string `bson:"type"`
			Severity string `bson:"severity"`
			Status   string `bson:"status"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode threat stats: %v", err)
	}

	stats := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		stats = append(stats, map[string]interface{}{
			"type":     r.ID.Type,
			"severity": r.ID.Severity,
			"status":   r.ID.Status,
			"count":    r.Count,
		})
	}

	return stats, nil
}

// DeleteThreat removes an incident
func (s *ThreatService) DeleteThreat(orgID, threatID string) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(threatID)
	if err != nil {
		return fmt.Errorf("%w: invalid threat id", ErrValidation)
	}
	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	collection := database.GetCollection(models.CollectionThreats)
	result, err := collection.DeleteOne(ctx, bson.M{"_id": objID, "organization_id": orgObjID})
	if err != nil {
		return fmt.Errorf("failed to delete threat: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: threat", ErrNotFound)
	}

	return nil
}

// replaceVersioned writes the threat back filtering on the version that was
// read; a zero match surfaces as a retryable conflict.
func (s *ThreatService) replaceVersioned(threat *models.Threat) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionThreats)

	readVersion := threat.Version
	threat.Version = readVersion + 1
	threat.UpdatedAt = time.Now()

	result, err := collection.ReplaceOne(ctx, bson.M{"_id": threat.ID, "version": readVersion}, threat)
	if err != nil {
		return fmt.Errorf("failed to update threat: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: threat was modified concurrently, retry", ErrConflict)
	}

	return nil
}

func statusTimelineEntry(status models.ThreatStatus, at time.Time, actor primitive.ObjectID, details string) models.TimelineEntry {
	if details == "" {
		details = fmt.Sprintf("Threat status updated to %s", status)
	}
	return models.TimelineEntry{
		Event:     fmt.Sprintf("Status changed to %s", status),
		Timestamp: at,
		Actor:     actor,
		Details:   details,
	}
}
