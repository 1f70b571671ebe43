package services

import (
	"context"
	"fmt"
	"time"

	"dashboard-service/logging"
	"dashboard-service/models"
	"dashboard-service/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserService owns accounts and authentication. Usernames are unique
// (backed by a unique index) and passwords are stored as bcrypt hashes.
type UserService struct {
	UsersCollection   *mongo.Collection
	MembersCollection *mongo.Collection
}

func NewUserService(users, members *mongo.Collection) *UserService {
	return &UserService{UsersCollection: users, MembersCollection: members}
}

func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Username == "" {
		return nil, &models.ValidationError{Field: "username", Reason: "username is required"}
	}
	if !models.ValidRole(user.Role) {
		return nil, &models.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", user.Role)}
	}
	if err := utils.ValidatePassword(user.Password); err != nil {
		return nil, &models.ValidationError{Field: "password", Reason: err.Error()}
	}

	count, err := s.UsersCollection.CountDocuments(ctx, bson.M{"username": user.Username})
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %v", err)
	}
	if count > 0 {
		return nil, &models.ValidationError{Field: "username", Reason: "username is already taken"}
	}

	if user.TeamMemberID != nil {
		memberCount, err := s.MembersCollection.CountDocuments(ctx, bson.M{"_id": *user.TeamMemberID})
		if err != nil {
			return nil, fmt.Errorf("failed to check team member: %v", err)
		}
		if memberCount == 0 {
			return nil, models.ErrNotFound
		}
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user.ID = primitive.NewObjectID()
	user.Password = hashed
	user.CreatedAt = time.Now()

	if _, err := s.UsersCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &models.ValidationError{Field: "username", Reason: "username is already taken"}
		}
		return nil, &models.PersistenceError{Op: "register user", Err: err}
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered with role %s", user.Username, user.Role)

	user.Password = ""
	return user, nil
}

// LoginUser verifies credentials, stamps the last login, and issues a
// signed token.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil, fmt.Errorf("invalid username or password")
		}
		return "", nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	if err := utils.CheckPassword(user.Password, password); err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Failed login attempt for user %s", username)
		return "", nil, fmt.Errorf("invalid username or password")
	}

	now := time.Now()
	if _, err := s.UsersCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastLogin": now}},
	); err != nil {
		logging.Logger.Warnf("Event ID: LAST_LOGIN_UPDATE_FAILED, Description: Failed to stamp last login for %s: %v", username, err)
	}
	user.LastLogin = &now

	token, err := utils.GenerateToken(user.ID.Hex(), user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %v", err)
	}

	logging.Logger.Infof("Event ID: USER_LOGGED_IN, Description: User %s logged in", username)

	user.Password = ""
	return token, &user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	user.Password = ""
	return &user, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.UsersCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// ChangePassword lets a user rotate their own password after proving
// they know the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to fetch user: %v", err)
	}

	if err := utils.CheckPassword(user.Password, oldPassword); err != nil {
		return &models.ValidationError{Field: "oldPassword", Reason: "current password is incorrect"}
	}
	if err := utils.ValidatePassword(newPassword); err != nil {
		return &models.ValidationError{Field: "newPassword", Reason: err.Error()}
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	if _, err := s.UsersCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hashed}},
	); err != nil {
		return &models.PersistenceError{Op: "change password", Err: err}
	}
	return nil
}

// ResetPassword issues a new random password for a user. Handlers gate
// this to admins; the generated password is returned exactly once.
func (s *UserService) ResetPassword(ctx context.Context, username string) (string, error) {
	generated := utils.GenerateRandomPassword()
	hashed, err := utils.HashPassword(generated)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %v", err)
	}

	result, err := s.UsersCollection.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"password": hashed}},
	)
	if err != nil {
		return "", &models.PersistenceError{Op: "reset password", Err: err}
	}
	if result.MatchedCount == 0 {
		return "", models.ErrNotFound
	}

	logging.Logger.Infof("Event ID: PASSWORD_RESET, Description: Password reset for user %s", username)
	return generated, nil
}

// LinkTeamMember ties a user account to a team member record so access
// checks can resolve assignments.
func (s *UserService) LinkTeamMember(ctx context.Context, userID, memberID primitive.ObjectID) error {
	count, err := s.MembersCollection.CountDocuments(ctx, bson.M{"_id": memberID})
	if err != nil {
		return fmt.Errorf("failed to check team member: %v", err)
	}
	if count == 0 {
		return models.ErrNotFound
	}

	result, err := s.UsersCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"teamMemberId": memberID}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "link team member", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
