package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Training types
const (
	TrainingTypeSecurity = "security"
	TrainingTypePrivacy  = "privacy"
	TrainingTypeOther    = "other"
)

// Training records a completed employee training course. Compliance rule 5
// counts completed security trainings within the caller's organization.
type Training struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization" bson:"organization_id"`
	UserID         primitive.ObjectID `json:"user" bson:"user_id"`
	Type           string             `json:"type" bson:"type"`
	CompletedAt    time.Time          `json:"completedAt" bson:"completed_at"`
}

// Notification is an in-app notification record
type Notification struct {
	ID             string             `json:"id" bson:"_id"`
	OrganizationID primitive.ObjectID `json:"organization" bson:"organization_id"`
	UserID         primitive.ObjectID `json:"user,omitempty" bson:"user_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	Message        string             `json:"message" bson:"message"`
	Kind           string             `json:"kind" bson:"kind"` // threat, compliance, system
	Read           bool               `json:"read" bson:"read"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
}

// Collection names
const (
	CollectionTrainings     = "trainings"
	CollectionNotifications = "notifications"
)
