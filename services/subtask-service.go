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

// SubtaskService owns subtask CRUD, the completion-report approval
// cycle, and the parent task's progress rollup. Whenever subtasks
// change, the parent's progress is recomputed as the mean of its
// subtasks' progress values.
type SubtaskService struct {
	SubtasksCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	Meetings           *MeetingService
	Notifier           Notifier
}

func NewSubtaskService(subtasks, tasks *mongo.Collection, meetings *MeetingService, notifier Notifier) *SubtaskService {
	return &SubtaskService{
		SubtasksCollection: subtasks,
		TasksCollection:    tasks,
		Meetings:           meetings,
		Notifier:           notifier,
	}
}

// CreateSubtask adds a subtask under an existing task. Unless the caller
// overrides, creation is gated on a completed planning meeting that
// mentions the parent task; the gate is advisory, not a hard rule.
func (s *SubtaskService) CreateSubtask(ctx context.Context, subtask *models.Subtask, overrideMeetingGate bool) (*models.Subtask, error) {
	if subtask.Name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if subtask.EndDate.Before(subtask.StartDate) {
		return nil, &models.ValidationError{Field: "endDate", Reason: "end date must not be before start date"}
	}
	if subtask.Progress < 0 || subtask.Progress > 100 {
		return nil, &models.ValidationError{Field: "progress", Reason: "progress must be between 0 and 100"}
	}
	if subtask.Status == "" {
		subtask.Status = models.TaskNotStarted
	}
	if !models.ValidTaskStatus(subtask.Status) {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", subtask.Status)}
	}

	var parent models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": subtask.ParentTaskID}).Decode(&parent); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch parent task: %v", err)
	}

	if !overrideMeetingGate {
		held, err := s.Meetings.HasCompletedMeetingForTask(ctx, parent.ProjectID, parent.Name)
		if err != nil {
			return nil, err
		}
		if !held {
			return nil, models.ErrMeetingRequired
		}
	}

	subtask.ID = primitive.NewObjectID()
	if subtask.AssignedMembers == nil {
		subtask.AssignedMembers = []primitive.ObjectID{}
	}

	if _, err := s.SubtasksCollection.InsertOne(ctx, subtask); err != nil {
		return nil, &models.PersistenceError{Op: "create subtask", Err: err}
	}

	if err := s.RecalculateTaskProgress(ctx, subtask.ParentTaskID); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: SUBTASK_CREATED, Description: Subtask %s created under task %s", subtask.ID.Hex(), subtask.ParentTaskID.Hex())
	return subtask, nil
}

func (s *SubtaskService) GetSubtask(ctx context.Context, subtaskID primitive.ObjectID) (*models.Subtask, error) {
	var subtask models.Subtask
	if err := s.SubtasksCollection.FindOne(ctx, bson.M{"_id": subtaskID}).Decode(&subtask); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch subtask: %v", err)
	}
	return &subtask, nil
}

func (s *SubtaskService) GetSubtasksByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Subtask, error) {
	cursor, err := s.SubtasksCollection.Find(ctx, bson.M{"parentTaskId": taskID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subtasks: %v", err)
	}
	defer cursor.Close(ctx)

	var subtasks []models.Subtask
	if err := cursor.All(ctx, &subtasks); err != nil {
		return nil, fmt.Errorf("failed to decode subtasks: %v", err)
	}
	return subtasks, nil
}

// UpdateSubtaskProgress sets the subtask's progress and rolls the change
// up into the parent task.
func (s *SubtaskService) UpdateSubtaskProgress(ctx context.Context, subtaskID primitive.ObjectID, progress int) error {
	if progress < 0 || progress > 100 {
		return &models.ValidationError{Field: "progress", Reason: "progress must be between 0 and 100"}
	}

	subtask, err := s.GetSubtask(ctx, subtaskID)
	if err != nil {
		return err
	}

	update := bson.M{"progress": progress}
	switch {
	case progress == 100 && !subtask.RequiresApproval:
		update["status"] = models.TaskCompleted
	case progress > 0 && subtask.Status == models.TaskNotStarted:
		update["status"] = models.TaskInProgress
	}

	if _, err := s.SubtasksCollection.UpdateOne(ctx, bson.M{"_id": subtaskID}, bson.M{"$set": update}); err != nil {
		return &models.PersistenceError{Op: "update subtask progress", Err: err}
	}

	return s.RecalculateTaskProgress(ctx, subtask.ParentTaskID)
}

// AssignMember adds a team member to the subtask.
func (s *SubtaskService) AssignMember(ctx context.Context, subtaskID, memberID primitive.ObjectID) error {
	result, err := s.SubtasksCollection.UpdateOne(ctx,
		bson.M{"_id": subtaskID},
		bson.M{"$addToSet": bson.M{"assignedMembers": memberID}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "assign member to subtask", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SubmitCompletionReport records the report, drives progress to 100, and
// either completes the subtask or parks it in Pending Approval when a
// review is required.
func (s *SubtaskService) SubmitCompletionReport(ctx context.Context, subtaskID, memberID primitive.ObjectID, report string) error {
	if report == "" {
		return &models.ValidationError{Field: "report", Reason: "completion report is required"}
	}

	subtask, err := s.GetSubtask(ctx, subtaskID)
	if err != nil {
		return err
	}
	if subtask.ApprovalStatus == models.ApprovalPending {
		return models.ErrInvalidState
	}

	now := time.Now()
	update := bson.M{
		"completionReport":  report,
		"reportSubmittedAt": now,
		"reportSubmittedBy": memberID,
		"progress":          100,
	}
	if subtask.RequiresApproval {
		update["approvalStatus"] = models.ApprovalPending
	} else {
		update["status"] = models.TaskCompleted
	}

	if _, err := s.SubtasksCollection.UpdateOne(ctx, bson.M{"_id": subtaskID}, bson.M{"$set": update}); err != nil {
		return &models.PersistenceError{Op: "submit completion report", Err: err}
	}

	return s.RecalculateTaskProgress(ctx, subtask.ParentTaskID)
}

// ApproveSubtask accepts a submitted completion report and completes the
// subtask. Only Pending Approval subtasks can be approved.
func (s *SubtaskService) ApproveSubtask(ctx context.Context, subtaskID, approverID primitive.ObjectID, comments string) error {
	now := time.Now()
	result, err := s.SubtasksCollection.UpdateOne(ctx,
		bson.M{"_id": subtaskID, "approvalStatus": models.ApprovalPending},
		bson.M{"$set": bson.M{
			"approvalStatus":   models.ApprovalApproved,
			"approvedBy":       approverID,
			"approvalDate":     now,
			"approvalComments": comments,
			"status":           models.TaskCompleted,
		}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "approve subtask", Err: err}
	}
	if result.MatchedCount == 0 {
		if _, getErr := s.GetSubtask(ctx, subtaskID); getErr != nil {
			return getErr
		}
		return models.ErrInvalidState
	}

	s.notifyAssigned(ctx, subtaskID, "completion report has been approved")
	return nil
}

// RejectSubtask sends a submitted report back for changes. The comments
// say what to fix; progress stays as reported until the member updates
// it.
func (s *SubtaskService) RejectSubtask(ctx context.Context, subtaskID, reviewerID primitive.ObjectID, comments string) error {
	now := time.Now()
	result, err := s.SubtasksCollection.UpdateOne(ctx,
		bson.M{"_id": subtaskID, "approvalStatus": models.ApprovalPending},
		bson.M{"$set": bson.M{
			"approvalStatus":   models.ApprovalRejected,
			"approvedBy":       reviewerID,
			"approvalDate":     now,
			"approvalComments": comments,
		}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "reject subtask", Err: err}
	}
	if result.MatchedCount == 0 {
		if _, getErr := s.GetSubtask(ctx, subtaskID); getErr != nil {
			return getErr
		}
		return models.ErrInvalidState
	}

	s.notifyAssigned(ctx, subtaskID, "completion report has been rejected")
	return nil
}

// GetSubtasksAwaitingApproval lists subtasks parked in Pending Approval.
func (s *SubtaskService) GetSubtasksAwaitingApproval(ctx context.Context) ([]models.Subtask, error) {
	cursor, err := s.SubtasksCollection.Find(ctx, bson.M{"approvalStatus": models.ApprovalPending})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subtasks awaiting approval: %v", err)
	}
	defer cursor.Close(ctx)

	var subtasks []models.Subtask
	if err := cursor.All(ctx, &subtasks); err != nil {
		return nil, fmt.Errorf("failed to decode subtasks: %v", err)
	}
	return subtasks, nil
}

// DeleteSubtask removes the subtask and recomputes the parent's
// progress from the remaining ones.
func (s *SubtaskService) DeleteSubtask(ctx context.Context, subtaskID primitive.ObjectID) error {
	subtask, err := s.GetSubtask(ctx, subtaskID)
	if err != nil {
		return err
	}

	result, err := s.SubtasksCollection.DeleteOne(ctx, bson.M{"_id": subtaskID})
	if err != nil {
		return &models.PersistenceError{Op: "delete subtask", Err: err}
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	return s.RecalculateTaskProgress(ctx, subtask.ParentTaskID)
}

// RecalculateTaskProgress sets the parent task's progress to the mean of
// its subtasks' progress. A task with no subtasks keeps its manually set
// progress.
func (s *SubtaskService) RecalculateTaskProgress(ctx context.Context, taskID primitive.ObjectID) error {
	subtasks, err := s.GetSubtasksByTask(ctx, taskID)
	if err != nil {
		return err
	}
	if len(subtasks) == 0 {
		return nil
	}

	values := make([]int, len(subtasks))
	for i, st := range subtasks {
		values[i] = st.Progress
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$set": bson.M{"progress": MeanProgress(values)}},
	); err != nil {
		return &models.PersistenceError{Op: "recalculate task progress", Err: err}
	}
	return nil
}

// MeanProgress averages progress values, truncating toward zero.
func MeanProgress(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum / len(values)
}

func (s *SubtaskService) notifyAssigned(ctx context.Context, subtaskID primitive.ObjectID, suffix string) {
	subtask, err := s.GetSubtask(ctx, subtaskID)
	if err != nil {
		return
	}
	message := fmt.Sprintf("Subtask %q %s", subtask.Name, suffix)
	if err := s.Notifier.NotifyMembers(ctx, subtask.AssignedMembers, message); err != nil {
		logging.Logger.Warnf("Event ID: SUBTASK_NOTIFY_FAILED, Description: Failed to notify assigned members of subtask %s: %v", subtaskID.Hex(), err)
	}
}
