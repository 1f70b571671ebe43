package services

import (
	"context"
	"fmt"
	"time"

	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ImpactEntry describes how one dependent task would shift if the
// analyzed task's end date moves. ImpactDays is signed so callers that
// compute their own deltas can carry negative values; AnalyzeImpact
// itself only reports positive delays.
type ImpactEntry struct {
	TaskID       primitive.ObjectID `json:"taskId"`
	TaskName     string             `json:"taskName"`
	CurrentStart time.Time          `json:"currentStart"`
	CurrentEnd   time.Time          `json:"currentEnd"`
	NewStart     time.Time          `json:"newStart"`
	NewEnd       time.Time          `json:"newEnd"`
	ImpactDays   int                `json:"impactDays"`
}

// ScheduleService analyzes how a proposed end-date change ripples into
// directly dependent tasks. Analysis is advisory: nothing is written
// unless the caller explicitly applies a shift.
type ScheduleService struct {
	TasksCollection *mongo.Collection
}

func NewScheduleService(tasks *mongo.Collection) *ScheduleService {
	return &ScheduleService{TasksCollection: tasks}
}

// AnalyzeImpact returns one entry per directly dependent task that is
// genuinely gated by the analyzed task's finish. A proposed end at or
// before the current end yields an empty result.
func (s *ScheduleService) AnalyzeImpact(ctx context.Context, taskID primitive.ObjectID, proposedEnd time.Time) ([]ImpactEntry, error) {
	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	dependents, err := s.GetDependentTasks(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return ComputeScheduleImpact(&task, dependents, proposedEnd), nil
}

// GetDependentTasks returns tasks whose dependency list contains taskID
// (direct dependents only, not transitive).
func (s *ScheduleService) GetDependentTasks(ctx context.Context, taskID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"dependencies": taskID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dependent tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var dependents []models.Task
	if err := cursor.All(ctx, &dependents); err != nil {
		return nil, fmt.Errorf("failed to decode dependent tasks: %v", err)
	}
	return dependents, nil
}

// ComputeScheduleImpact is the date arithmetic behind AnalyzeImpact.
// Dependents that start before the analyzed task's current end are not
// considered blocked and are excluded.
func ComputeScheduleImpact(task *models.Task, dependents []models.Task, proposedEnd time.Time) []ImpactEntry {
	if !proposedEnd.After(task.EndDate) {
		return nil
	}

	delayDays := DaysBetween(task.EndDate, proposedEnd)

	var impacted []ImpactEntry
	for _, dep := range dependents {
		if dep.StartDate.Before(task.EndDate) {
			continue
		}
		shift := time.Duration(delayDays) * 24 * time.Hour
		impacted = append(impacted, ImpactEntry{
			TaskID:       dep.ID,
			TaskName:     dep.Name,
			CurrentStart: dep.StartDate,
			CurrentEnd:   dep.EndDate,
			NewStart:     dep.StartDate.Add(shift),
			NewEnd:       dep.EndDate.Add(shift),
			ImpactDays:   delayDays,
		})
	}
	return impacted
}

// DaysBetween counts calendar days from a to b (negative when b is
// before a). Inputs are date-only values at midnight.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// ApplyShift moves one dependent task's schedule to the suggested dates.
// Callers invoke it per entry after reviewing an analysis.
func (s *ScheduleService) ApplyShift(ctx context.Context, entry ImpactEntry) error {
	result, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": entry.TaskID},
		bson.M{"$set": bson.M{"startDate": entry.NewStart, "endDate": entry.NewEnd}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "apply schedule shift", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
