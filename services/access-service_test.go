package services

import (
	"testing"

	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLeaderOverseesAssignee(t *testing.T) {
	assignee := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	task := &models.Task{AssignedMembers: []primitive.ObjectID{assignee}}

	tests := []struct {
		name    string
		reports []models.TeamMember
		want    bool
	}{
		{
			name:    "direct report is assigned",
			reports: []models.TeamMember{{ID: assignee}},
			want:    true,
		},
		{
			name:    "direct report not assigned",
			reports: []models.TeamMember{{ID: outsider}},
			want:    false,
		},
		{
			name:    "no direct reports",
			reports: nil,
			want:    false,
		},
		{
			name:    "mixed reports, one assigned",
			reports: []models.TeamMember{{ID: outsider}, {ID: assignee}},
			want:    true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LeaderOverseesAssignee(task, tc.reports); got != tc.want {
				t.Errorf("LeaderOverseesAssignee() = %v, want %v", got, tc.want)
			}
		})
	}
}
