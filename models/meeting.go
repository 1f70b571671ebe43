package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MeetingStatus string

const (
	MeetingScheduled  MeetingStatus = "Scheduled"
	MeetingInProgress MeetingStatus = "In Progress"
	MeetingCompleted  MeetingStatus = "Completed"
	MeetingCancelled  MeetingStatus = "Cancelled"
)

type ActionItem struct {
	ID          primitive.ObjectID  `bson:"id" json:"id"`
	Description string              `bson:"description" json:"description"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Status      string              `bson:"status" json:"status"`
	CompletedAt *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

type Meeting struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProjectID    primitive.ObjectID   `bson:"projectId" json:"projectId"`
	Title        string               `bson:"title" json:"title"`
	ScheduledAt  time.Time            `bson:"scheduledAt" json:"scheduledAt"`
	Duration     int                  `bson:"duration" json:"duration"` // minutes
	Location     string               `bson:"location" json:"location"`
	Agenda       string               `bson:"agenda" json:"agenda"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	OrganizedBy  *primitive.ObjectID  `bson:"organizedBy,omitempty" json:"organizedBy,omitempty"`
	Status       MeetingStatus        `bson:"status" json:"status"`
	Minutes      string               `bson:"minutes,omitempty" json:"minutes,omitempty"`
	ActionItems  []ActionItem         `bson:"actionItems" json:"actionItems"`
	StartTime    *time.Time           `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime      *time.Time           `bson:"endTime,omitempty" json:"endTime,omitempty"`
}

// CanTransition reports whether a meeting may move between the two states.
// Allowed paths: Scheduled -> In Progress -> Completed, Scheduled -> Cancelled.
func CanTransitionMeeting(from, to MeetingStatus) bool {
	switch from {
	case MeetingScheduled:
		return to == MeetingInProgress || to == MeetingCancelled
	case MeetingInProgress:
		return to == MeetingCompleted
	}
	return false
}
