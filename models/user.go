package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin      = "admin"
	RoleTeamLeader = "team_leader"
	RoleTeamMember = "team_member"
)

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Username     string              `bson:"username" json:"username"`
	Password     string              `bson:"password" json:"password,omitempty"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	Role         string              `bson:"role" json:"role"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	LastLogin    *time.Time          `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	TeamMemberID *primitive.ObjectID `bson:"teamMemberId,omitempty" json:"teamMemberId,omitempty"`
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTeamLeader || role == RoleTeamMember
}
