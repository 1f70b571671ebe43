package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChangeRequestStatus string

const (
	RequestPending  ChangeRequestStatus = "Pending"
	RequestApproved ChangeRequestStatus = "Approved"
	RequestRejected ChangeRequestStatus = "Rejected"
)

// TargetType names the kind of entity a change request modifies.
type TargetType string

const (
	TargetTask    TargetType = "task"
	TargetSubtask TargetType = "subtask"
)

// ChangeRequest is a proposed field-level diff against a task or subtask.
// Exactly one of TaskID / SubtaskID is set. CurrentData snapshots the
// target at request time so reviewers can diff against it; ProposedChanges
// holds only the fields being changed.
type ChangeRequest struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TaskID          *primitive.ObjectID  `bson:"taskId,omitempty" json:"taskId,omitempty"`
	SubtaskID       *primitive.ObjectID  `bson:"subtaskId,omitempty" json:"subtaskId,omitempty"`
	RequestedBy     primitive.ObjectID   `bson:"requestedBy" json:"requestedBy"`
	RequestedAt     time.Time            `bson:"requestedAt" json:"requestedAt"`
	Status          ChangeRequestStatus  `bson:"status" json:"status"`
	CurrentData     map[string]any       `bson:"currentData" json:"currentData"`
	ProposedChanges map[string]any       `bson:"proposedChanges" json:"proposedChanges"`
	ChangeReason    string               `bson:"changeReason,omitempty" json:"changeReason,omitempty"`
	ImpactAnalysis  string               `bson:"impactAnalysis,omitempty" json:"impactAnalysis,omitempty"`
	ReviewedBy      *primitive.ObjectID  `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewDate      *time.Time           `bson:"reviewDate,omitempty" json:"reviewDate,omitempty"`
	ReviewComments  string               `bson:"reviewComments,omitempty" json:"reviewComments,omitempty"`
	RequiresMeeting bool                 `bson:"requiresMeeting" json:"requiresMeeting"`
	MeetingID       *primitive.ObjectID  `bson:"meetingId,omitempty" json:"meetingId,omitempty"`
	AffectedMembers []primitive.ObjectID `bson:"affectedMembers" json:"affectedMembers"`
}

// TargetType derives the target kind from whichever reference is set.
func (r *ChangeRequest) TargetType() TargetType {
	if r.TaskID != nil {
		return TargetTask
	}
	return TargetSubtask
}

// CanResolve reports whether the request is still open for a decision.
// Approved and rejected requests are final; resolving them again is an
// invalid state transition.
func (r *ChangeRequest) CanResolve() error {
	if r.Status != RequestPending {
		return ErrInvalidState
	}
	return nil
}
