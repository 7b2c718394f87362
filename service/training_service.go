package service

import (
	"fmt"
	"time"

	"cyberguard/database"
	"cyberguard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TrainingService struct{}

func NewTrainingService() *TrainingService {
	return &TrainingService{}
}

// RecordTraining stores a completed training for a user
func (s *TrainingService) RecordTraining(orgID, userID primitive.ObjectID, trainingType string) (*models.Training, error) {
	switch trainingType {
	case models.TrainingTypeSecurity, models.TrainingTypePrivacy, models.TrainingTypeOther:
	default:
		return nil, fmt.Errorf("%w: unknown training type %q", ErrValidation, trainingType)
	}
	if orgID.IsZero() || userID.IsZero() {
		return nil, fmt.Errorf("%w: organization and user are required", ErrValidation)
	}

	ctx, cancel := database.NewContext()
	defer cancel()

	collection := database.GetCollection(models.CollectionTrainings)

	training := &models.Training{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		UserID:         userID,
		Type:           trainingType,
		CompletedAt:    time.Now(),
	}

	if _, err := collection.InsertOne(ctx, training); err != nil {
		return nil, fmt.Errorf("failed to record training: %v", err)
	}

	return training, nil
}

// ListTrainings lists completed trainings for an organization
func (s *TrainingService) ListTrainings(orgID string, trainingType string, page, pageSize int) ([]*models.Training, int64, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	collection := database.GetCollection(models.CollectionTrainings)

	filter := bson.M{"organization_id": orgObjID}
	if trainingType != "" {
		filter["type"] = trainingType
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count trainings: %v", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "completed_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trainings: %v", err)
	}
	defer cursor.Close(ctx)

	var trainings []*models.Training
	if err = cursor.All(ctx, &trainings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode trainings: %v", err)
	}

	return trainings, total, nil
}
