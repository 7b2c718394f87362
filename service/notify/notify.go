package notify

import (
	"fmt"
	"time"

	"cyberguard/database"
	"cyberguard/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service persists in-app notifications. Delivery channels (email, SMS,
// push) are outside this engine; dashboards read these records.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Create stores a notification for an organization
func (s *Service) Create(orgID primitive.ObjectID, kind, title, message string) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionNotifications)

	notification := models.Notification{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Kind:           kind,
		Title:          title,
		Message:        message,
		CreatedAt:      time.Now(),
	}

	if _, err := collection.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %v", err)
	}

	return nil
}

// NotifyThreat records a notification for a newly reported incident
func (s *Service) NotifyThreat(threat *models.Threat) error {
	title := fmt.Sprintf("New %s threat detected", threat.Severity)
	message := fmt.Sprintf("%s (priority %s, detection: %s)", threat.Title, threat.Priority, threat.AIDetection.Result)
	return s.Create(threat.OrganizationID, "threat", title, message)
}

// List returns the most recent notifications for an organization
func (s *Service) List(orgID string, limit int) ([]*models.Notification, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization id")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	collection := database.GetCollection(models.CollectionNotifications)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{"organization_id": orgObjID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as read
func (s *Service) MarkRead(orgID, notificationID string) error {
	ctx, cancel := database.NewContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return fmt.Errorf("invalid organization id")
	}

	collection := database.GetCollection(models.CollectionNotifications)

	result, err := collection.UpdateOne(ctx,
		bson.M{"_id": notificationID, "organization_id": orgObjID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}
