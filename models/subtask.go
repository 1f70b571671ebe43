package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Subtask struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ParentTaskID      primitive.ObjectID   `bson:"parentTaskId" json:"parentTaskId"`
	Name              string               `bson:"name" json:"name"`
	Description       string               `bson:"description" json:"description"`
	StartDate         time.Time            `bson:"startDate" json:"startDate"`
	EndDate           time.Time            `bson:"endDate" json:"endDate"`
	Status            TaskStatus           `bson:"status" json:"status"`
	Progress          int                  `bson:"progress" json:"progress"`
	RequiresApproval  bool                 `bson:"requiresApproval" json:"requiresApproval"`
	AssignedMembers   []primitive.ObjectID `bson:"assignedMembers" json:"assignedMembers"`
	CreatedBy         *primitive.ObjectID  `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	ApprovalStatus    ApprovalStatus       `bson:"approvalStatus,omitempty" json:"approvalStatus,omitempty"`
	ApprovedBy        *primitive.ObjectID  `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovalDate      *time.Time           `bson:"approvalDate,omitempty" json:"approvalDate,omitempty"`
	ApprovalComments  string               `bson:"approvalComments,omitempty" json:"approvalComments,omitempty"`
	CompletionReport  string               `bson:"completionReport,omitempty" json:"completionReport,omitempty"`
	ReportSubmittedAt *time.Time           `bson:"reportSubmittedAt,omitempty" json:"reportSubmittedAt,omitempty"`
	ReportSubmittedBy *primitive.ObjectID  `bson:"reportSubmittedBy,omitempty" json:"reportSubmittedBy,omitempty"`
	HasPendingChanges bool                 `bson:"hasPendingChanges" json:"hasPendingChanges"`
}

// IsAssigned reports whether the team member is assigned to the subtask.
func (s *Subtask) IsAssigned(memberID primitive.ObjectID) bool {
	for _, m := range s.AssignedMembers {
		if m == memberID {
			return true
		}
	}
	return false
}
