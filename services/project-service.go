package services

import (
	"context"
	"fmt"
	"time"

	"dashboard-service/logging"
	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProjectService owns project CRUD and archival. Archived projects stay
// readable but are excluded from the default listing.
type ProjectService struct {
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	MembersCollection  *mongo.Collection
}

func NewProjectService(projects, tasks, members *mongo.Collection) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projects,
		TasksCollection:    tasks,
		MembersCollection:  members,
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	if project.Name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if project.EndDate.Before(project.StartDate) {
		return nil, &models.ValidationError{Field: "endDate", Reason: "end date must not be before start date"}
	}
	if project.Status == "" {
		project.Status = models.ProjectPlanning
	}
	if !models.ValidProjectStatus(project.Status) {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", project.Status)}
	}
	if project.Budget < 0 {
		return nil, &models.ValidationError{Field: "budget", Reason: "budget must not be negative"}
	}

	project.ID = primitive.NewObjectID()
	project.CreatedAt = time.Now()
	project.IsArchived = false

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		return nil, &models.PersistenceError{Op: "create project", Err: err}
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s (%s) created", project.ID.Hex(), project.Name)
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}
	return &project, nil
}

// GetProjects lists projects, excluding archived ones unless asked.
func (s *ProjectService) GetProjects(ctx context.Context, includeArchived bool) ([]models.Project, error) {
	query := bson.M{}
	if !includeArchived {
		query["isArchived"] = false
	}

	cursor, err := s.ProjectsCollection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}
	return projects, nil
}

// UpdateProject updates the editable fields of a project.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID primitive.ObjectID, update *models.Project) error {
	if update.Name == "" {
		return &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if update.EndDate.Before(update.StartDate) {
		return &models.ValidationError{Field: "endDate", Reason: "end date must not be before start date"}
	}
	if !models.ValidProjectStatus(update.Status) {
		return &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", update.Status)}
	}

	result, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": bson.M{
			"name":        update.Name,
			"description": update.Description,
			"type":        update.Type,
			"startDate":   update.StartDate,
			"endDate":     update.EndDate,
			"budget":      update.Budget,
			"status":      update.Status,
		}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "update project", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ArchiveProject hides a project from the default listing without
// deleting any of its data.
func (s *ProjectService) ArchiveProject(ctx context.Context, projectID primitive.ObjectID) error {
	return s.setArchived(ctx, projectID, true)
}

// RestoreProject brings an archived project back.
func (s *ProjectService) RestoreProject(ctx context.Context, projectID primitive.ObjectID) error {
	return s.setArchived(ctx, projectID, false)
}

func (s *ProjectService) setArchived(ctx context.Context, projectID primitive.ObjectID, archived bool) error {
	result, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": bson.M{"isArchived": archived}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "archive project", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
