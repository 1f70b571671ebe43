package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "Not Started"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
	TaskOnHold     TaskStatus = "On Hold"
)

// Approval states shared by tasks and subtasks. An empty ApprovalStatus
// means no approval cycle has been started yet.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending Approval"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

type Task struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProjectID         primitive.ObjectID   `bson:"projectId" json:"projectId"`
	Name              string               `bson:"name" json:"name"`
	Description       string               `bson:"description" json:"description"`
	StartDate         time.Time            `bson:"startDate" json:"startDate"`
	EndDate           time.Time            `bson:"endDate" json:"endDate"`
	Status            TaskStatus           `bson:"status" json:"status"`
	Priority          string               `bson:"priority" json:"priority"`
	Progress          int                  `bson:"progress" json:"progress"`
	AssignedMembers   []primitive.ObjectID `bson:"assignedMembers" json:"assignedMembers"`
	Dependencies      []primitive.ObjectID `bson:"dependencies" json:"dependencies"`
	RequiresApproval  bool                 `bson:"requiresApproval" json:"requiresApproval"`
	ApprovalStatus    ApprovalStatus       `bson:"approvalStatus,omitempty" json:"approvalStatus,omitempty"`
	ApprovedBy        *primitive.ObjectID  `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovalDate      *time.Time           `bson:"approvalDate,omitempty" json:"approvalDate,omitempty"`
	ReviewedBy        *primitive.ObjectID  `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewDate        *time.Time           `bson:"reviewDate,omitempty" json:"reviewDate,omitempty"`
	RejectionReason   string               `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	HasPendingChanges bool                 `bson:"hasPendingChanges" json:"hasPendingChanges"`
}

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskOnHold:
		return true
	}
	return false
}

// DependsOn reports whether the task lists dep among its prerequisites.
func (t *Task) DependsOn(dep primitive.ObjectID) bool {
	for _, d := range t.Dependencies {
		if d == dep {
			return true
		}
	}
	return false
}

// IsAssigned reports whether the team member is assigned to the task.
func (t *Task) IsAssigned(memberID primitive.ObjectID) bool {
	for _, m := range t.AssignedMembers {
		if m == memberID {
			return true
		}
	}
	return false
}
