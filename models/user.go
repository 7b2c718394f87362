package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a first-class tenant. Assets, threats, users and training
// records all reference an organization id; nothing reuses a user id as the
// tenant key.
type Organization struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Industry  string             `json:"industry,omitempty" bson:"industry,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// User represents a platform user
type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization" bson:"organization_id"`
	Username       string             `json:"username" bson:"username"`
	Password       string             `json:"-" bson:"password"`
	Email          string             `json:"email" bson:"email"`
	Role           string             `json:"role" bson:"role"` // admin, analyst, viewer
	Permissions    []string           `json:"permissions,omitempty" bson:"permissions,omitempty"`
	Status         int                `json:"status" bson:"status"` // 1: active, 0: disabled
	LastLogin      time.Time          `json:"lastLogin" bson:"last_login"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

// HasPermission reports whether the user carries the permission; admins
// implicitly carry everything.
func (u *User) HasPermission(permission string) bool {
	if u.Role == "admin" {
		return true
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// OperationLog represents operation audit logs
type OperationLog struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"user_id"`
	Username  string             `json:"username" bson:"username"`
	Action    string             `json:"action" bson:"action"`
	Module    string             `json:"module" bson:"module"`
	Target    string             `json:"target" bson:"target"`
	IP        string             `json:"ip" bson:"ip"`
	UserAgent string             `json:"userAgent" bson:"user_agent"`
	Status    int                `json:"status" bson:"status"` // 1: success, 0: failed
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// Collection names
const (
	CollectionOrganizations = "organizations"
	CollectionUsers         = "users"
	CollectionOperationLog  = "operation_logs"
)
