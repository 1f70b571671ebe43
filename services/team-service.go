package services

import (
	"context"
	"fmt"

	"dashboard-service/logging"
	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TeamService owns team members and the one-level reporting hierarchy:
// a member may report to a leader in the same project, and leaders do
// not report to anyone within the hierarchy checks.
type TeamService struct {
	MembersCollection  *mongo.Collection
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	SubtasksCollection *mongo.Collection
	UsersCollection    *mongo.Collection
}

func NewTeamService(members, projects, tasks, subtasks, users *mongo.Collection) *TeamService {
	return &TeamService{
		MembersCollection:  members,
		ProjectsCollection: projects,
		TasksCollection:    tasks,
		SubtasksCollection: subtasks,
		UsersCollection:    users,
	}
}

func (s *TeamService) AddTeamMember(ctx context.Context, member *models.TeamMember) (*models.TeamMember, error) {
	if member.Name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "name is required"}
	}

	count, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"_id": member.ProjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check project: %v", err)
	}
	if count == 0 {
		return nil, models.ErrNotFound
	}

	member.ID = primitive.NewObjectID()
	if member.ReportsTo != nil {
		if err := s.validateReportsTo(ctx, member, *member.ReportsTo); err != nil {
			return nil, err
		}
	}

	if _, err := s.MembersCollection.InsertOne(ctx, member); err != nil {
		return nil, &models.PersistenceError{Op: "add team member", Err: err}
	}

	logging.Logger.Infof("Event ID: MEMBER_ADDED, Description: Team member %s added to project %s", member.ID.Hex(), member.ProjectID.Hex())
	return member, nil
}

func (s *TeamService) GetTeamMember(ctx context.Context, memberID primitive.ObjectID) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := s.MembersCollection.FindOne(ctx, bson.M{"_id": memberID}).Decode(&member); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch team member: %v", err)
	}
	return &member, nil
}

func (s *TeamService) GetTeamMembersByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.TeamMember, error) {
	cursor, err := s.MembersCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team members: %v", err)
	}
	defer cursor.Close(ctx)

	var members []models.TeamMember
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode team members: %v", err)
	}
	return members, nil
}

// GetTeamLeaders lists the leaders of a project.
func (s *TeamService) GetTeamLeaders(ctx context.Context, projectID primitive.ObjectID) ([]models.TeamMember, error) {
	cursor, err := s.MembersCollection.Find(ctx, bson.M{"projectId": projectID, "isTeamLeader": true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team leaders: %v", err)
	}
	defer cursor.Close(ctx)

	var leaders []models.TeamMember
	if err := cursor.All(ctx, &leaders); err != nil {
		return nil, fmt.Errorf("failed to decode team leaders: %v", err)
	}
	return leaders, nil
}

// GetDirectReports lists the members who report to the given leader.
func (s *TeamService) GetDirectReports(ctx context.Context, leaderID primitive.ObjectID) ([]models.TeamMember, error) {
	cursor, err := s.MembersCollection.Find(ctx, bson.M{"reportsTo": leaderID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch direct reports: %v", err)
	}
	defer cursor.Close(ctx)

	var reports []models.TeamMember
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode direct reports: %v", err)
	}
	return reports, nil
}

// SetReportsTo points a member at a leader in the same project. A nil
// leader clears the link.
func (s *TeamService) SetReportsTo(ctx context.Context, memberID primitive.ObjectID, leaderID *primitive.ObjectID) error {
	member, err := s.GetTeamMember(ctx, memberID)
	if err != nil {
		return err
	}

	if leaderID == nil {
		if _, err := s.MembersCollection.UpdateOne(ctx,
			bson.M{"_id": memberID},
			bson.M{"$unset": bson.M{"reportsTo": ""}},
		); err != nil {
			return &models.PersistenceError{Op: "clear reports-to", Err: err}
		}
		return nil
	}

	if err := s.validateReportsTo(ctx, member, *leaderID); err != nil {
		return err
	}

	if _, err := s.MembersCollection.UpdateOne(ctx,
		bson.M{"_id": memberID},
		bson.M{"$set": bson.M{"reportsTo": *leaderID}},
	); err != nil {
		return &models.PersistenceError{Op: "set reports-to", Err: err}
	}
	return nil
}

// SetTeamLeader toggles a member's leader flag.
func (s *TeamService) SetTeamLeader(ctx context.Context, memberID primitive.ObjectID, isLeader bool) error {
	result, err := s.MembersCollection.UpdateOne(ctx,
		bson.M{"_id": memberID},
		bson.M{"$set": bson.M{"isTeamLeader": isLeader}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "set team leader", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RemoveTeamMember deletes the member and scrubs every reference: task
// and subtask assignments, reports-to links, and the user account link.
func (s *TeamService) RemoveTeamMember(ctx context.Context, memberID primitive.ObjectID) error {
	result, err := s.MembersCollection.DeleteOne(ctx, bson.M{"_id": memberID})
	if err != nil {
		return &models.PersistenceError{Op: "remove team member", Err: err}
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	if _, err := s.TasksCollection.UpdateMany(ctx,
		bson.M{"assignedMembers": memberID},
		bson.M{"$pull": bson.M{"assignedMembers": memberID}},
	); err != nil {
		return &models.PersistenceError{Op: "unassign removed member from tasks", Err: err}
	}
	if _, err := s.SubtasksCollection.UpdateMany(ctx,
		bson.M{"assignedMembers": memberID},
		bson.M{"$pull": bson.M{"assignedMembers": memberID}},
	); err != nil {
		return &models.PersistenceError{Op: "unassign removed member from subtasks", Err: err}
	}
	if _, err := s.MembersCollection.UpdateMany(ctx,
		bson.M{"reportsTo": memberID},
		bson.M{"$unset": bson.M{"reportsTo": ""}},
	); err != nil {
		return &models.PersistenceError{Op: "clear reports-to of removed leader", Err: err}
	}
	if _, err := s.UsersCollection.UpdateMany(ctx,
		bson.M{"teamMemberId": memberID},
		bson.M{"$unset": bson.M{"teamMemberId": ""}},
	); err != nil {
		return &models.PersistenceError{Op: "unlink user of removed member", Err: err}
	}

	logging.Logger.Infof("Event ID: MEMBER_REMOVED, Description: Team member %s removed", memberID.Hex())
	return nil
}

func (s *TeamService) validateReportsTo(ctx context.Context, member *models.TeamMember, leaderID primitive.ObjectID) error {
	if leaderID == member.ID {
		return &models.ValidationError{Field: "reportsTo", Reason: "a member cannot report to themselves"}
	}

	leader, err := s.GetTeamMember(ctx, leaderID)
	if err != nil {
		return err
	}
	if leader.ProjectID != member.ProjectID {
		return &models.ValidationError{Field: "reportsTo", Reason: "leader belongs to a different project"}
	}
	if !leader.IsTeamLeader {
		return &models.ValidationError{Field: "reportsTo", Reason: "target member is not a team leader"}
	}
	return nil
}
