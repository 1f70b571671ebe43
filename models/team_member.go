package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type TeamMember struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID    primitive.ObjectID  `bson:"projectId" json:"projectId"`
	Name         string              `bson:"name" json:"name"`
	Role         string              `bson:"role" json:"role"`
	ContactEmail string              `bson:"contactEmail,omitempty" json:"contactEmail,omitempty"`
	ContactPhone string              `bson:"contactPhone,omitempty" json:"contactPhone,omitempty"`
	IsTeamLeader bool                `bson:"isTeamLeader" json:"isTeamLeader"`
	ReportsTo    *primitive.ObjectID `bson:"reportsTo,omitempty" json:"reportsTo,omitempty"`
}
