package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dashboard-service/logging"
	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MeetingService manages the meeting lifecycle. Transitions are strictly
// Scheduled -> In Progress -> Completed, with Scheduled -> Cancelled as
// the only other exit; Completed and Cancelled are terminal.
type MeetingService struct {
	MeetingsCollection *mongo.Collection
	ProjectsCollection *mongo.Collection
	Notifier           Notifier
}

func NewMeetingService(meetings, projects *mongo.Collection, notifier Notifier) *MeetingService {
	return &MeetingService{MeetingsCollection: meetings, ProjectsCollection: projects, Notifier: notifier}
}

func (s *MeetingService) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if meeting.Title == "" {
		return nil, &models.ValidationError{Field: "title", Reason: "title is required"}
	}
	if meeting.ScheduledAt.IsZero() {
		return nil, &models.ValidationError{Field: "scheduledAt", Reason: "scheduled time is required"}
	}
	if meeting.Duration <= 0 {
		return nil, &models.ValidationError{Field: "duration", Reason: "duration must be positive"}
	}

	count, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"_id": meeting.ProjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check project: %v", err)
	}
	if count == 0 {
		return nil, models.ErrNotFound
	}

	meeting.ID = primitive.NewObjectID()
	meeting.Status = models.MeetingScheduled
	if meeting.Participants == nil {
		meeting.Participants = []primitive.ObjectID{}
	}
	if meeting.ActionItems == nil {
		meeting.ActionItems = []models.ActionItem{}
	}

	if _, err := s.MeetingsCollection.InsertOne(ctx, meeting); err != nil {
		return nil, &models.PersistenceError{Op: "create meeting", Err: err}
	}

	if err := s.Notifier.NotifyMembers(ctx, meeting.Participants,
		fmt.Sprintf("You have been invited to meeting %q on %s", meeting.Title, meeting.ScheduledAt.Format("2006-01-02 15:04"))); err != nil {
		logging.Logger.Warnf("Event ID: MEETING_NOTIFY_FAILED, Description: Failed to notify participants of meeting %s: %v", meeting.ID.Hex(), err)
	}

	logging.Logger.Infof("Event ID: MEETING_CREATED, Description: Meeting %s scheduled for project %s", meeting.ID.Hex(), meeting.ProjectID.Hex())
	return meeting, nil
}

func (s *MeetingService) GetMeeting(ctx context.Context, meetingID primitive.ObjectID) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := s.MeetingsCollection.FindOne(ctx, bson.M{"_id": meetingID}).Decode(&meeting); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch meeting: %v", err)
	}
	return &meeting, nil
}

func (s *MeetingService) GetMeetingsByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Meeting, error) {
	cursor, err := s.MeetingsCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meetings: %v", err)
	}
	defer cursor.Close(ctx)

	var meetings []models.Meeting
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, fmt.Errorf("failed to decode meetings: %v", err)
	}
	return meetings, nil
}

// StartMeeting moves a scheduled meeting into In Progress and stamps the
// actual start time.
func (s *MeetingService) StartMeeting(ctx context.Context, meetingID primitive.ObjectID) error {
	now := time.Now()
	return s.transition(ctx, meetingID, models.MeetingInProgress, bson.M{"startTime": now})
}

// CompleteMeeting closes an In Progress meeting, stamping the end time
// and recording the minutes.
func (s *MeetingService) CompleteMeeting(ctx context.Context, meetingID primitive.ObjectID, minutes string) error {
	now := time.Now()
	return s.transition(ctx, meetingID, models.MeetingCompleted, bson.M{"endTime": now, "minutes": minutes})
}

// CancelMeeting cancels a meeting that has not started.
func (s *MeetingService) CancelMeeting(ctx context.Context, meetingID primitive.ObjectID) error {
	if err := s.transition(ctx, meetingID, models.MeetingCancelled, nil); err != nil {
		return err
	}

	meeting, err := s.GetMeeting(ctx, meetingID)
	if err == nil {
		if err := s.Notifier.NotifyMembers(ctx, meeting.Participants,
			fmt.Sprintf("Meeting %q has been cancelled", meeting.Title)); err != nil {
			logging.Logger.Warnf("Event ID: MEETING_NOTIFY_FAILED, Description: Failed to notify participants of cancelled meeting %s: %v", meetingID.Hex(), err)
		}
	}
	return nil
}

func (s *MeetingService) transition(ctx context.Context, meetingID primitive.ObjectID, to models.MeetingStatus, extra bson.M) error {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	if !models.CanTransitionMeeting(meeting.Status, to) {
		return models.ErrInvalidState
	}

	update := bson.M{"status": to}
	for k, v := range extra {
		update[k] = v
	}

	// Conditional on the current status so a concurrent transition
	// cannot sneak the meeting through a disallowed path.
	result, err := s.MeetingsCollection.UpdateOne(ctx,
		bson.M{"_id": meetingID, "status": meeting.Status},
		bson.M{"$set": update},
	)
	if err != nil {
		return &models.PersistenceError{Op: "transition meeting", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrInvalidState
	}
	return nil
}

// AddActionItem appends a follow-up item to a meeting.
func (s *MeetingService) AddActionItem(ctx context.Context, meetingID primitive.ObjectID, description string, assignedTo *primitive.ObjectID) (*models.ActionItem, error) {
	if description == "" {
		return nil, &models.ValidationError{Field: "description", Reason: "description is required"}
	}

	item := models.ActionItem{
		ID:          primitive.NewObjectID(),
		Description: description,
		AssignedTo:  assignedTo,
		Status:      "Open",
	}

	result, err := s.MeetingsCollection.UpdateOne(ctx,
		bson.M{"_id": meetingID},
		bson.M{"$push": bson.M{"actionItems": item}},
	)
	if err != nil {
		return nil, &models.PersistenceError{Op: "add action item", Err: err}
	}
	if result.MatchedCount == 0 {
		return nil, models.ErrNotFound
	}
	return &item, nil
}

// CompleteActionItem marks one action item done and stamps when.
func (s *MeetingService) CompleteActionItem(ctx context.Context, meetingID, itemID primitive.ObjectID) error {
	now := time.Now()
	result, err := s.MeetingsCollection.UpdateOne(ctx,
		bson.M{"_id": meetingID, "actionItems.id": itemID},
		bson.M{"$set": bson.M{
			"actionItems.$.status":      "Completed",
			"actionItems.$.completedAt": now,
		}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "complete action item", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// HasCompletedMeetingForTask reports whether any completed meeting in
// the project mentions the task by name in its minutes, agenda, or
// action items. The check is textual because meetings are not linked to
// tasks structurally.
func (s *MeetingService) HasCompletedMeetingForTask(ctx context.Context, projectID primitive.ObjectID, taskName string) (bool, error) {
	cursor, err := s.MeetingsCollection.Find(ctx, bson.M{
		"projectId": projectID,
		"status":    models.MeetingCompleted,
	})
	if err != nil {
		return false, fmt.Errorf("failed to fetch meetings: %v", err)
	}
	defer cursor.Close(ctx)

	var meetings []models.Meeting
	if err := cursor.All(ctx, &meetings); err != nil {
		return false, fmt.Errorf("failed to decode meetings: %v", err)
	}

	return MeetingsMentionTask(meetings, taskName), nil
}

// MeetingsMentionTask scans completed-meeting text for the task name,
// case-insensitively.
func MeetingsMentionTask(meetings []models.Meeting, taskName string) bool {
	if taskName == "" {
		return false
	}
	needle := strings.ToLower(taskName)
	for _, m := range meetings {
		if strings.Contains(strings.ToLower(m.Minutes), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(m.Agenda), needle) {
			return true
		}
		for _, item := range m.ActionItems {
			if strings.Contains(strings.ToLower(item.Description), needle) {
				return true
			}
		}
	}
	return false
}
