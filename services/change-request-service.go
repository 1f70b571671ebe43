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

// ChangeRequestService runs the approval workflow for task and subtask
// edits: Pending -> Approved (diff applied) or Pending -> Rejected, both
// terminal. The target carries hasPendingChanges while a request is
// unresolved; no other code path toggles that flag.
type ChangeRequestService struct {
	Client             *mongo.Client
	RequestsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	SubtasksCollection *mongo.Collection
	UsersCollection    *mongo.Collection
	Notifier           Notifier
}

func NewChangeRequestService(client *mongo.Client, requests, tasks, subtasks, users *mongo.Collection, notifier Notifier) *ChangeRequestService {
	return &ChangeRequestService{
		Client:             client,
		RequestsCollection: requests,
		TasksCollection:    tasks,
		SubtasksCollection: subtasks,
		UsersCollection:    users,
		Notifier:           notifier,
	}
}

// CreateChangeRequest snapshots the target, flags it as having pending
// changes, and persists the request. The proposed diff is validated
// against the target's schema up front so an unapplyable request can
// never reach the Pending state.
func (s *ChangeRequestService) CreateChangeRequest(ctx context.Context, targetType models.TargetType, targetID, requesterID primitive.ObjectID, proposedChanges map[string]any, requiresMeeting bool, reason, impactAnalysis string) (*models.ChangeRequest, error) {
	if len(proposedChanges) == 0 {
		return nil, &models.ValidationError{Field: "proposedChanges", Reason: "at least one change is required"}
	}

	request := &models.ChangeRequest{
		ID:              primitive.NewObjectID(),
		RequestedBy:     requesterID,
		RequestedAt:     time.Now(),
		Status:          models.RequestPending,
		ProposedChanges: proposedChanges,
		ChangeReason:    reason,
		ImpactAnalysis:  impactAnalysis,
		RequiresMeeting: requiresMeeting,
	}

	switch targetType {
	case models.TargetTask:
		var task models.Task
		if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": targetID}).Decode(&task); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, models.ErrNotFound
			}
			return nil, fmt.Errorf("failed to fetch task: %v", err)
		}

		probe := task
		if err := models.ApplyTaskChanges(&probe, proposedChanges); err != nil {
			return nil, err
		}

		snapshot, err := snapshotDocument(task)
		if err != nil {
			return nil, err
		}
		request.TaskID = &targetID
		request.CurrentData = snapshot
		request.AffectedMembers = task.AssignedMembers

	case models.TargetSubtask:
		var subtask models.Subtask
		if err := s.SubtasksCollection.FindOne(ctx, bson.M{"_id": targetID}).Decode(&subtask); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, models.ErrNotFound
			}
			return nil, fmt.Errorf("failed to fetch subtask: %v", err)
		}

		probe := subtask
		if err := models.ApplySubtaskChanges(&probe, proposedChanges); err != nil {
			return nil, err
		}

		snapshot, err := snapshotDocument(subtask)
		if err != nil {
			return nil, err
		}
		request.SubtaskID = &targetID
		request.CurrentData = snapshot
		request.AffectedMembers = subtask.AssignedMembers

	default:
		return nil, &models.ValidationError{Field: "targetType", Reason: fmt.Sprintf("unknown target type %q", targetType)}
	}

	err := s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := s.targetCollection(request).UpdateOne(sc,
			bson.M{"_id": targetID},
			bson.M{"$set": bson.M{"hasPendingChanges": true}},
		); err != nil {
			return err
		}
		_, err := s.RequestsCollection.InsertOne(sc, request)
		return err
	})
	if err != nil {
		return nil, &models.PersistenceError{Op: "create change request", Err: err}
	}

	// Best-effort: a failed notification never fails the request.
	if err := s.Notifier.NotifyMembers(ctx, request.AffectedMembers, fmt.Sprintf("A change has been proposed for a %s you are assigned to (request %s)", targetType, request.ID.Hex())); err != nil {
		logging.Logger.Warnf("Event ID: CR_NOTIFY_FAILED, Description: Failed to notify affected members for request %s: %v", request.ID.Hex(), err)
	}

	return request, nil
}

// ApproveChangeRequest applies the proposed diff onto the target and
// resolves the request. The target update and the status flip commit
// together or not at all; the status flip itself is conditional on the
// request still being Pending, so a concurrent resolution loses cleanly.
func (s *ChangeRequestService) ApproveChangeRequest(ctx context.Context, requestID, approverID primitive.ObjectID, comments string) error {
	request, err := s.GetChangeRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := request.CanResolve(); err != nil {
		return err
	}

	now := time.Now()
	err = s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := s.RequestsCollection.UpdateOne(sc,
			bson.M{"_id": requestID, "status": models.RequestPending},
			bson.M{"$set": bson.M{
				"status":         models.RequestApproved,
				"reviewedBy":     approverID,
				"reviewDate":     now,
				"reviewComments": comments,
			}},
		)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return models.ErrInvalidState
		}

		if request.TaskID != nil {
			var task models.Task
			if err := s.TasksCollection.FindOne(sc, bson.M{"_id": *request.TaskID}).Decode(&task); err != nil {
				if err == mongo.ErrNoDocuments {
					return models.ErrNotFound
				}
				return err
			}
			if err := models.ApplyTaskChanges(&task, request.ProposedChanges); err != nil {
				return err
			}
			task.HasPendingChanges = false
			if _, err := s.TasksCollection.ReplaceOne(sc, bson.M{"_id": task.ID}, task); err != nil {
				return err
			}
		} else if request.SubtaskID != nil {
			var subtask models.Subtask
			if err := s.SubtasksCollection.FindOne(sc, bson.M{"_id": *request.SubtaskID}).Decode(&subtask); err != nil {
				if err == mongo.ErrNoDocuments {
					return models.ErrNotFound
				}
				return err
			}
			if err := models.ApplySubtaskChanges(&subtask, request.ProposedChanges); err != nil {
				return err
			}
			subtask.HasPendingChanges = false
			if _, err := s.SubtasksCollection.ReplaceOne(sc, bson.M{"_id": subtask.ID}, subtask); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if err == models.ErrNotFound || err == models.ErrInvalidState {
			return err
		}
		if _, ok := err.(*models.ValidationError); ok {
			return err
		}
		return &models.PersistenceError{Op: "approve change request", Err: err}
	}

	s.notifyResolution(ctx, request, "approved")
	return nil
}

// RejectChangeRequest resolves the request without touching the
// target's business fields; only the pending-changes flag is cleared.
func (s *ChangeRequestService) RejectChangeRequest(ctx context.Context, requestID, reviewerID primitive.ObjectID, comments string) error {
	request, err := s.GetChangeRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := request.CanResolve(); err != nil {
		return err
	}

	now := time.Now()
	err = s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := s.RequestsCollection.UpdateOne(sc,
			bson.M{"_id": requestID, "status": models.RequestPending},
			bson.M{"$set": bson.M{
				"status":         models.RequestRejected,
				"reviewedBy":     reviewerID,
				"reviewDate":     now,
				"reviewComments": comments,
			}},
		)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return models.ErrInvalidState
		}

		// A deleted target is fine here; there is nothing left to unflag.
		_, err = s.targetCollection(request).UpdateOne(sc,
			bson.M{"_id": s.targetID(request)},
			bson.M{"$set": bson.M{"hasPendingChanges": false}},
		)
		return err
	})
	if err != nil {
		if err == models.ErrInvalidState {
			return err
		}
		return &models.PersistenceError{Op: "reject change request", Err: err}
	}

	s.notifyResolution(ctx, request, "rejected")
	return nil
}

func (s *ChangeRequestService) GetChangeRequest(ctx context.Context, requestID primitive.ObjectID) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	if err := s.RequestsCollection.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch change request: %v", err)
	}
	return &request, nil
}

// ChangeRequestFilter narrows ListChangeRequests. Zero values mean "any".
type ChangeRequestFilter struct {
	TargetType models.TargetType
	TargetID   *primitive.ObjectID
	Status     models.ChangeRequestStatus
}

// ListChangeRequests returns the filtered set with no ordering
// guarantee; callers sort for display.
func (s *ChangeRequestService) ListChangeRequests(ctx context.Context, filter ChangeRequestFilter) ([]models.ChangeRequest, error) {
	query := bson.M{}

	switch filter.TargetType {
	case models.TargetTask:
		if filter.TargetID != nil {
			query["taskId"] = *filter.TargetID
		} else {
			query["taskId"] = bson.M{"$ne": nil}
		}
	case models.TargetSubtask:
		if filter.TargetID != nil {
			query["subtaskId"] = *filter.TargetID
		} else {
			query["subtaskId"] = bson.M{"$ne": nil}
		}
	default:
		if filter.TargetID != nil {
			query["$or"] = []bson.M{
				{"taskId": *filter.TargetID},
				{"subtaskId": *filter.TargetID},
			}
		}
	}

	if filter.Status != "" {
		query["status"] = filter.Status
	}

	cursor, err := s.RequestsCollection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch change requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ChangeRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode change requests: %v", err)
	}
	return requests, nil
}

// ListChangeRequestsForUser returns the union of requests the user
// authored and requests where the user's team member is affected,
// deduplicated by request id.
func (s *ChangeRequestService) ListChangeRequestsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChangeRequest, error) {
	var user models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	or := []bson.M{{"requestedBy": userID}}
	if user.TeamMemberID != nil {
		or = append(or, bson.M{"affectedMembers": *user.TeamMemberID})
	}

	cursor, err := s.RequestsCollection.Find(ctx, bson.M{"$or": or})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch change requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ChangeRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode change requests: %v", err)
	}

	seen := make(map[primitive.ObjectID]bool, len(requests))
	deduped := requests[:0]
	for _, r := range requests {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		deduped = append(deduped, r)
	}
	return deduped, nil
}

func (s *ChangeRequestService) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := s.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *ChangeRequestService) targetCollection(request *models.ChangeRequest) *mongo.Collection {
	if request.TaskID != nil {
		return s.TasksCollection
	}
	return s.SubtasksCollection
}

func (s *ChangeRequestService) targetID(request *models.ChangeRequest) primitive.ObjectID {
	if request.TaskID != nil {
		return *request.TaskID
	}
	return *request.SubtaskID
}

func (s *ChangeRequestService) notifyResolution(ctx context.Context, request *models.ChangeRequest, outcome string) {
	message := fmt.Sprintf("Change request %s has been %s", request.ID.Hex(), outcome)
	if err := s.Notifier.NotifyMembers(ctx, request.AffectedMembers, message); err != nil {
		logging.Logger.Warnf("Event ID: CR_NOTIFY_FAILED, Description: Failed to notify members about %s request %s: %v", outcome, request.ID.Hex(), err)
	}
}

// snapshotDocument round-trips an entity through BSON into a generic map
// so the request can store an audit copy of the target at request time.
func snapshotDocument(v any) (map[string]any, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot document: %v", err)
	}
	var m map[string]any
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %v", err)
	}
	return m, nil
}
