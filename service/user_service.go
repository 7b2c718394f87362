package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"cyberguard/database"
	"cyberguard/models"
	"cyberguard/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

// Register creates a new organization with its first (admin) user
func (s *UserService) Register(username, password, email, organizationName string) (*models.User, error) {
	if username == "" || password == "" || organizationName == "" {
		return nil, fmt.Errorf("%w: username, password and organization are required", ErrValidation)
	}
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	ctx, cancel := database.NewContext()
	defer cancel()

	users := database.GetCollection(models.CollectionUsers)
	organizations := database.GetCollection(models.CollectionOrganizations)

	var existing models.User
	if err := users.FindOne(ctx, bson.M{"username": username}).Decode(&existing); err == nil {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}
	if err := users.FindOne(ctx, bson.M{"email": email}).Decode(&existing); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now()
	org := &models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      organizationName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := organizations.InsertOne(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %v", err)
	}

	user := &models.User{
		ID:             primitive.NewObjectID(),
		OrganizationID: org.ID,
		Username:       username,
		Password:       hashedPassword,
		Email:          email,
		Role:           "admin",
		Status:         1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := users.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *UserService) Login(username, password string) (string, *models.User, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	users := database.GetCollection(models.CollectionUsers)

	var user models.User
	err := users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		log.Printf("Login failed for %s: %v", username, err)
		return "", nil, fmt.Errorf("%w: invalid username or password", ErrValidation)
	}

	if user.Status != 1 {
		return "", nil, fmt.Errorf("%w: user is disabled", ErrValidation)
	}

	if !utils.CheckPassword(password, user.Password) {
		return "", nil, fmt.Errorf("%w: invalid username or password", ErrValidation)
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Username, user.Role, user.OrganizationID.Hex())
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %v", err)
	}

	now := time.Now()
	_, _ = users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"last_login": now}})
	user.LastLogin = now

	return token, &user, nil
}

// CreateUser adds a user to an existing organization
func (s *UserService) CreateUser(orgID primitive.ObjectID, username, password, email, role string) (*models.User, error) {
	if role != "admin" && role != "analyst" && role != "viewer" {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	ctx, cancel := database.NewContext()
	defer cancel()

	users := database.GetCollection(models.CollectionUsers)

	var existing models.User
	if err := users.FindOne(ctx, bson.M{"username": username}).Decode(&existing); err == nil {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &models.User{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Username:       username,
		Password:       hashedPassword,
		Email:          email,
		Role:           role,
		Status:         1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := users.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	return user, nil
}

// GetUserByID retrieves one user
func (s *UserService) GetUserByID(userID string) (*models.User, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}

	users := database.GetCollection(models.CollectionUsers)

	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	return &user, nil
}

// ListUsers lists the members of an organization
func (s *UserService) ListUsers(orgID string) ([]*models.User, error) {
	ctx, cancel := database.NewContext()
	defer cancel()

	orgObjID, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}

	users := database.GetCollection(models.CollectionUsers)

	cursor, err := users.Find(ctx, bson.M{"organization_id": orgObjID})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	defer cursor.Close(ctx)

	var members []*models.User
	if err = cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	return members, nil
}

// ChangePassword verifies the old password and stores a new hash
func (s *UserService) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(oldPassword, user.Password) {
		return fmt.Errorf("%w: wrong password", ErrValidation)
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	ctx, cancel := database.NewContext()
	defer cancel()

	users := database.GetCollection(models.CollectionUsers)
	_, err = users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"password":   hashedPassword,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}

	return nil
}
