package services

import (
	"context"
	"fmt"

	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AccessService answers read/write eligibility questions from role and
// team-hierarchy membership.
type AccessService struct {
	UsersCollection    *mongo.Collection
	TasksCollection    *mongo.Collection
	SubtasksCollection *mongo.Collection
	MembersCollection  *mongo.Collection
}

func NewAccessService(users, tasks, subtasks, members *mongo.Collection) *AccessService {
	return &AccessService{
		UsersCollection:    users,
		TasksCollection:    tasks,
		SubtasksCollection: subtasks,
		MembersCollection:  members,
	}
}

// CanAccessProject is true for admins and for users whose linked team
// member belongs to the project roster.
func (s *AccessService) CanAccessProject(ctx context.Context, userID, projectID primitive.ObjectID) (bool, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if user.Role == models.RoleAdmin {
		return true, nil
	}

	if user.TeamMemberID == nil {
		return false, nil
	}

	count, err := s.MembersCollection.CountDocuments(ctx, bson.M{
		"_id":       *user.TeamMemberID,
		"projectId": projectID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check project roster: %v", err)
	}
	return count > 0, nil
}

// CanAccessTask is true for admins, for assigned members, and for team
// leaders with a direct report on the assignment list. The leader check
// is one level deep only; it does not walk the hierarchy further up.
func (s *AccessService) CanAccessTask(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if user.Role == models.RoleAdmin {
		return true, nil
	}

	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch task: %v", err)
	}

	if user.TeamMemberID == nil {
		return false, nil
	}

	if task.IsAssigned(*user.TeamMemberID) {
		return true, nil
	}

	var member models.TeamMember
	if err := s.MembersCollection.FindOne(ctx, bson.M{"_id": *user.TeamMemberID}).Decode(&member); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch team member: %v", err)
	}
	if !member.IsTeamLeader {
		return false, nil
	}

	cursor, err := s.MembersCollection.Find(ctx, bson.M{"reportsTo": member.ID})
	if err != nil {
		return false, fmt.Errorf("failed to fetch direct reports: %v", err)
	}
	defer cursor.Close(ctx)

	var reports []models.TeamMember
	if err := cursor.All(ctx, &reports); err != nil {
		return false, fmt.Errorf("failed to decode direct reports: %v", err)
	}

	return LeaderOverseesAssignee(&task, reports), nil
}

// CanAccessSubtask resolves the subtask's parent task and applies the
// task rule: subtask visibility follows the parent.
func (s *AccessService) CanAccessSubtask(ctx context.Context, userID, subtaskID primitive.ObjectID) (bool, error) {
	var subtask models.Subtask
	if err := s.SubtasksCollection.FindOne(ctx, bson.M{"_id": subtaskID}).Decode(&subtask); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch subtask: %v", err)
	}
	return s.CanAccessTask(ctx, userID, subtask.ParentTaskID)
}

// LeaderOverseesAssignee reports whether any of the leader's direct
// reports appears on the task's assignment list.
func LeaderOverseesAssignee(task *models.Task, directReports []models.TeamMember) bool {
	for _, report := range directReports {
		if task.IsAssigned(report.ID) {
			return true
		}
	}
	return false
}

func (s *AccessService) getUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}
